// Package server exposes the auction house over HTTP/JSON. Every operation
// reads a JSON body; failures surface as HTTP 500 with a plain-text message
// so a curl user sees exactly what went wrong. Hex byte strings are
// 0x-prefixed, wei values travel as decimal strings to avoid 64-bit
// overflow.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-chi/chi/v5"
	"github.com/holiman/uint256"
	"github.com/rs/cors"

	"github.com/eth2030/txauction/auction"
	"github.com/eth2030/txauction/log"
	"github.com/eth2030/txauction/metrics"
	"github.com/eth2030/txauction/txcodec"
)

// Server routes the builder/searcher HTTP surface onto an auction house.
type Server struct {
	house  *auction.House
	router chi.Router
	lg     *log.Logger
}

// New creates a Server for the given house.
func New(house *auction.House) *Server {
	s := &Server{
		house:  house,
		router: chi.NewRouter(),
		lg:     log.Default().Module("server"),
	}

	s.router.Use(cors.AllowAll().Handler)

	s.router.Post("/register", s.handleRegister)
	s.router.Get("/status", s.handleStatus)
	s.router.Post("/submitTx", s.handleSubmitTx)
	s.router.Get("/txPool", s.handleTxPool)
	s.router.Post("/submitBid", s.handleSubmitBid)
	s.router.Get("/results", s.handleResults)
	s.router.Method(http.MethodGet, "/metrics", metrics.DefaultRegistry.Handler())

	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ---------------------------------------------------------------------------
// Wire types
// ---------------------------------------------------------------------------

type registerRequest struct {
	PubKey string `json:"pubKey"`
}

type statusResponse struct {
	Access         bool   `json:"access"`
	PendingPayment string `json:"pendingPayment"`
}

type submitTxRequest struct {
	RawTx string `json:"rawTx"`
}

type poolEntry struct {
	Data    *txcodec.TxData `json:"data"`
	Reserve string          `json:"reserve"`
}

type submitBidRequest struct {
	PubKey string `json:"pubKey"`
	TxHash string `json:"txHash"`
	Value  string `json:"value"`
}

type submitBidResponse struct {
	Slot string `json:"slot"`
}

type resultsRequest struct {
	PubKey string `json:"pubKey"`
	Slot   uint64 `json:"slot"`
}

type resultEntry struct {
	TxHash  common.Hash     `json:"txHash"`
	Payment string          `json:"payment"`
	Data    *txcodec.TxData `json:"data"`
}

type resultsResponse struct {
	Transactions []resultEntry `json:"transactions"`
	TotalPayment string        `json:"total_payment"`
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	pubkey, err := hexutil.Decode(req.PubKey)
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := s.house.Register(pubkey); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	pubkey, err := hexutil.Decode(req.PubKey)
	if err != nil {
		s.fail(w, err)
		return
	}
	st, err := s.house.Status(pubkey)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, statusResponse{
		Access:         st.Access,
		PendingPayment: st.PendingPayment.Dec(),
	})
}

func (s *Server) handleSubmitTx(w http.ResponseWriter, r *http.Request) {
	var req submitTxRequest
	if err := readJSON(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	raw, err := hexutil.Decode(req.RawTx)
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := s.house.SubmitTx(r.Context(), raw); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleTxPool(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	pubkey, err := hexutil.Decode(req.PubKey)
	if err != nil {
		s.fail(w, err)
		return
	}
	pool, err := s.house.TxPool(pubkey)
	if err != nil {
		s.fail(w, err)
		return
	}
	out := make([]poolEntry, 0, len(pool))
	for _, tx := range pool {
		out = append(out, poolEntry{Data: tx.Data, Reserve: tx.Reserve.Dec()})
	}
	s.writeJSON(w, out)
}

func (s *Server) handleSubmitBid(w http.ResponseWriter, r *http.Request) {
	var req submitBidRequest
	if err := readJSON(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	pubkey, err := hexutil.Decode(req.PubKey)
	if err != nil {
		s.fail(w, err)
		return
	}
	txHash, err := decodeHash(req.TxHash)
	if err != nil {
		s.fail(w, err)
		return
	}
	value, err := uint256.FromDecimal(req.Value)
	if err != nil {
		s.fail(w, err)
		return
	}
	slot, err := s.house.SubmitBid(pubkey, txHash, value)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, submitBidResponse{Slot: strconv.FormatUint(slot, 10)})
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	var req resultsRequest
	if err := readJSON(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	pubkey, err := hexutil.Decode(req.PubKey)
	if err != nil {
		s.fail(w, err)
		return
	}
	list, total, err := s.house.Results(pubkey, req.Slot)
	if err != nil {
		s.fail(w, err)
		return
	}
	out := resultsResponse{
		Transactions: make([]resultEntry, 0, len(list)),
		TotalPayment: total.Dec(),
	}
	for _, res := range list {
		out.Transactions = append(out.Transactions, resultEntry{
			TxHash:  res.TxHash,
			Payment: res.Payment.Dec(),
			Data:    res.Data,
		})
	}
	s.writeJSON(w, out)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var errBadHash = errors.New("server: txHash must be a 32-byte 0x hex string")

func decodeHash(s string) (common.Hash, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return common.Hash{}, err
	}
	if len(b) != common.HashLength {
		return common.Hash{}, errBadHash
	}
	return common.BytesToHash(b), nil
}

func readJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.lg.Warn("response write failed", "err", err)
	}
}

// fail maps every handler error to HTTP 500 with the message as plain text.
func (s *Server) fail(w http.ResponseWriter, err error) {
	s.lg.Debug("request failed", "err", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
