// Package instagram provides a client for Instagram's private mobile API.
//
// This package includes:
//   - A Client that logs in, keeps the session cookies and signs requests
//   - A generic Call primitive every endpoint method is built on
//   - Endpoint groups for accounts, feeds, media, users, friendships, tags,
//     locations, live broadcasts and discovery
//   - Optional patching of responses into the legacy public API shapes
//
// Example usage:
//
//	client, err := instagram.New(instagram.Options{
//	    Username: "user",
//	    Password: "pass",
//	    OnLogin: func(s *session.Snapshot) {
//	        data, _ := s.Encode()
//	        _ = os.WriteFile("session.json", data, 0600)
//	    },
//	})
//	if err != nil {
//	    return err
//	}
//	if err := client.Login(); err != nil {
//	    return err
//	}
//
//	items, err := client.FeedTimeline(50, nil)
//	if err != nil {
//	    switch {
//	    case errors.Is(err, errors.ErrSessionExpired):
//	        // Relogin and try again
//	    case errors.Is(err, errors.ErrThrottled):
//	        // Back off
//	    }
//	}
//
// A Client is not safe for concurrent use. It never retries on its own;
// pkg/retry and pkg/ratelimit are there for callers that want to.
package instagram
