package domain

import (
	"errors"
	"fmt"
)

type LoopType string

const (
	// advances starting instances to running or error.
	Startup LoopType = "startup"

	// advances stopping instances to stopped or error.
	Teardown LoopType = "teardown"

	// tears down cluster workloads no instance record knows about.
	Orphan LoopType = "orphan"

	// purges terminal instance records whose retention has passed.
	Expiry LoopType = "expiry"
)

// NOTE: we define them here, because...
//
// 1. "we have loops, they are like this" is a part of the model of berth.
//
// 2. When we make loops scalable, we will use database to throttle loops.
//

func (lt LoopType) String() string {
	return string(lt)
}

func (lt LoopType) IsKnown() bool {
	switch lt {
	case Startup, Teardown, Orphan, Expiry:
		return true
	default:
		return false
	}
}

func AsLoopType(s string) (LoopType, error) {
	l := LoopType(s)
	if l.IsKnown() {
		return l, nil
	}
	return l, fmt.Errorf(`%w: "%s"`, ErrUnknownLoopType, s)
}

var ErrUnknownLoopType = errors.New("unknown loop type")
