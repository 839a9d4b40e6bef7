// Package upstream forwards calls to a Parse-Server based OpenSign backend
// whose mount path is not known in advance.
//
// A logical call flows through four pieces:
//
//   - Shaper trims oversized base64 documents from PDF-signing bodies.
//   - Locator tries each configured mount prefix in order.
//   - Retrier repeats large calls on transient transport errors with
//     exponential backoff (1s, 2s, ...).
//   - Classify decides whether a response came from the API (success or
//     application error) or from something else mounted at that prefix.
//
// Client ties them together:
//
//	client := upstream.NewClient(cfg)
//	outcome := client.Forward(ctx, &upstream.OutboundRequest{
//		Method: http.MethodPost,
//		Path:   "functions/getDocument",
//		Body:   []byte(`{"docId":"abc"}`),
//	})
//	switch outcome.Kind {
//	case upstream.OutcomeSuccess, upstream.OutcomeAPIError:
//		// forward outcome.Body with outcome.Status
//	case upstream.OutcomeExhausted:
//		// outcome.Err is an *ExhaustedError listing every URL tried
//	}
//
// Candidate attempts are strictly sequential. Wrong-mount answers are
// usually fast local HTML pages while real API calls may be slow.
package upstream
