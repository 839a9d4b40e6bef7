// Package types defines the JSON bodies the relay writes itself.
//
// Upstream answers are forwarded byte for byte and have no type here. The
// relay only authors a body when it has to speak for itself:
//
//   - ErrorResponse without troubleshooting, for rejected inbound requests
//     (413 body too large, 405 method not allowed) and internal failures.
//   - ErrorResponse with a Troubleshooting block, when no candidate mount
//     prefix produced a recognizable API answer (502).
//
// Example troubleshooting body:
//
//	{
//	  "error": "The signing backend could not be reached",
//	  "troubleshooting": {
//	    "attemptedUrls": [
//	      "https://sign.example.com/app/functions/getDocument",
//	      "https://sign.example.com/api/app/functions/getDocument"
//	    ],
//	    "lastError": "https://sign.example.com/api/app/functions/getDocument returned an HTML page (status 200), not the API",
//	    "hints": [
//	      {"category": "wrong_mount", "message": "..."},
//	      {"category": "configuration", "message": "..."}
//	    ]
//	  }
//	}
//
// Field names are camelCase to match what the browser client reads.
package types
