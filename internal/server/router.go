package server

import "net/http"

// Router returns the HTTP handler with every route registered.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.health)

	// LINE webhook
	mux.HandleFunc("/callback", s.callback)

	// read-only views of the ledger
	mux.HandleFunc("/accounts", s.accounts)
	mux.HandleFunc("/accounts/balance", s.balance)

	return mux
}
