// Package async runs work off the UI loop and delivers its result back on it.
//
// A Task runs its work function through an Executor (a worker pool or the
// toolkit's background facility) and, when the work finishes or the task is
// cancelled, posts the Result to the UI loop through a Poster. The task's
// Completed channel is raised exactly once, inside the posted function, so
// handlers always run on the UI loop goroutine.
//
//	task := async.New(loadThumbnail, workers, toolkit)
//	task.Completed.Listen(func(_ *async.Task[Image], r async.Result[Image]) {
//	    if r.Status == async.StatusCompleted && r.Err == nil {
//	        view.Image.Set(r.Value)
//	    }
//	})
//	if err := task.Schedule(); err != nil {
//	    return err
//	}
//
// Cancellation is cooperative: Cancel before the work starts prevents it from
// running; Cancel while it runs cancels the context passed to the work.
package async
