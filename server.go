package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"i4.energy/across/sigfox/modem"
)

// Server handles incoming HTTP requests for interacting with the
// configured modem instance
type Server struct {
	Logger *slog.Logger
	Modem  *modem.Modem
}

// ServeHTTP implements the http.Handler interface for the Server struct
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /device", s.handleDevice)
	mux.HandleFunc("GET /telemetry", s.handleTelemetry)
	mux.HandleFunc("POST /frame", s.handleFrame)
	mux.HandleFunc("POST /bit", s.handleBit)
	mux.HandleFunc("POST /power", s.handlePower)
	mux.HandleFunc("POST /repeat", s.handleRepeat)
	mux.HandleFunc("POST /wake", s.handleWake)
	mux.ServeHTTP(w, r)
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	if message == "" {
		w.WriteHeader(statusCode)
		return
	}

	type ErrorResponse struct {
		Message string `json:"message"`
	}
	resp := ErrorResponse{Message: message}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)

}

// sendModemError maps driver errors to HTTP status codes: bad arguments are
// the caller's fault, a silent modem is a gateway timeout.
func (s *Server) sendModemError(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, modem.ErrFrameLength), errors.Is(err, modem.ErrInvalidPowerMode):
		status = http.StatusBadRequest
	case errors.Is(err, modem.ErrTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, modem.ErrUnexpectedReply), errors.Is(err, modem.ErrMalformedReply),
		errors.Is(err, modem.ErrRepeatMismatch):
		status = http.StatusBadGateway
	}
	s.Logger.Error("Modem operation failed", "operation", op, "error", err)
	s.sendError(w, err.Error(), status)
}

func (s *Server) sendJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

// handleDevice returns the device ID and PAC
func (s *Server) handleDevice(w http.ResponseWriter, r *http.Request) {
	id, err := s.Modem.ID(r.Context())
	if err != nil {
		s.sendModemError(w, "id", err)
		return
	}
	pac, err := s.Modem.PAC(r.Context())
	if err != nil {
		s.sendModemError(w, "pac", err)
		return
	}

	type DeviceResponse struct {
		ID  modem.ID  `json:"id"`
		PAC modem.PAC `json:"pac"`
	}
	s.sendJSON(w, DeviceResponse{ID: id, PAC: pac})
}

// handleTelemetry returns temperature and supply voltages
func (s *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	temp, err := s.Modem.Temperature(r.Context())
	if err != nil {
		s.sendModemError(w, "temperature", err)
		return
	}
	current, last, err := s.Modem.Voltage(r.Context())
	if err != nil {
		s.sendModemError(w, "voltage", err)
		return
	}

	type TelemetryResponse struct {
		Temperature   int `json:"temperature"`
		Voltage       int `json:"voltage"`
		VoltageLastTx int `json:"voltage_last_tx"`
	}
	s.sendJSON(w, TelemetryResponse{Temperature: temp, Voltage: current, VoltageLastTx: last})
}

type uplinkResponse struct {
	Downlink *string `json:"downlink,omitempty"`
}

func newUplinkResponse(dl *modem.Downlink) uplinkResponse {
	if dl == nil {
		return uplinkResponse{}
	}
	return uplinkResponse{Downlink: &dl.Text}
}

// handleFrame sends an uplink frame given as hex
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	type FrameRequest struct {
		Data     string `json:"data"`
		Downlink bool   `json:"downlink"`
	}

	var req FrameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := hex.DecodeString(req.Data)
	if err != nil {
		s.sendError(w, "'data' must be hex encoded", http.StatusBadRequest)
		return
	}

	dl, err := s.Modem.SendFrame(r.Context(), data, req.Downlink)
	if err != nil {
		s.sendModemError(w, "frame", err)
		return
	}

	s.Logger.Info("Frame sent successfully", "length", len(data), "downlink", dl != nil)
	s.sendJSON(w, newUplinkResponse(dl))
}

// handleBit sends a single bit uplink
func (s *Server) handleBit(w http.ResponseWriter, r *http.Request) {
	type BitRequest struct {
		Bit      bool `json:"bit"`
		Downlink bool `json:"downlink"`
	}

	var req BitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	dl, err := s.Modem.SendBit(r.Context(), req.Bit, req.Downlink)
	if err != nil {
		s.sendModemError(w, "bit", err)
		return
	}

	s.Logger.Info("Bit sent successfully", "bit", req.Bit, "downlink", dl != nil)
	s.sendJSON(w, newUplinkResponse(dl))
}

// handlePower changes the modem power mode
func (s *Server) handlePower(w http.ResponseWriter, r *http.Request) {
	type PowerRequest struct {
		Mode string `json:"mode"`
	}

	var req PowerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	mode, err := modem.ParsePowerMode(req.Mode)
	if err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.Modem.SetPowerMode(r.Context(), mode); err != nil {
		s.sendModemError(w, "power", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleRepeat sets the number of transmit repeats
func (s *Server) handleRepeat(w http.ResponseWriter, r *http.Request) {
	type RepeatRequest struct {
		Repeats *int `json:"repeats"`
	}

	var req RepeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Repeats == nil || *req.Repeats < 0 || *req.Repeats > 255 {
		s.sendError(w, "'repeats' must be between 0 and 255", http.StatusBadRequest)
		return
	}

	if err := s.Modem.SetTransmitRepeat(r.Context(), uint8(*req.Repeats)); err != nil {
		s.sendModemError(w, "repeat", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleWake sends a break and waits for the modem to answer again
func (s *Server) handleWake(w http.ResponseWriter, r *http.Request) {
	if err := s.Modem.SendBreak(r.Context()); err != nil {
		s.sendModemError(w, "break", err)
		return
	}
	if err := s.Modem.WaitReady(r.Context(), modem.PollConfig{}); err != nil {
		s.sendModemError(w, "wake", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
