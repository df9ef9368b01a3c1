// Package frame defers the destruction of flagged resource types to frame
// boundaries.
//
// Types registered with resource.WithDeferredDestroy are not torn down the
// moment their last reference goes away. The Scheduler keeps one share of
// the instance alive until the next EndFrame, so a resource that is dropped
// and requested again within the same frame is reused instead of reloaded,
// and expensive teardown happens at a predictable point in the host loop:
//
//	sched := frame.New(mgr)
//	for running {
//	    update(sched)
//	    if _, err := sched.EndFrame(); err != nil {
//	        log.Print(err)
//	    }
//	}
//	sched.Flush()
package frame
