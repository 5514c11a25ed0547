package transfer

import "time"

// sleep is indirected so tests can shrink the sender/receiver pacing
// without changing the production intervals.
var sleep = time.Sleep

var now = time.Now
