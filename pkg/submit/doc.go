// Package submit posts a filled form to its action URL and turns the answer
// into a saved file or a user-facing failure message.
//
// A Submitter drives three handles: a status.Display that shows a working
// message while the request is in flight, a notify.Notifier that presents
// failures, and a download.Saver that holds the response in a temporary
// reference, saves it under a fixed filename and releases the reference.
//
//	sub := submit.New(
//		submit.WithStatus(status.NewLine(os.Stderr)),
//		submit.WithSaver(download.NewFileSaver("out", false, logger)),
//	)
//	res, err := sub.Submit(ctx, submit.Request{Form: form, Values: values})
package submit
