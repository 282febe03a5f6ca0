package sink

import "fmt"

var ErrSinkClosed = fmt.Errorf("sink closed")
