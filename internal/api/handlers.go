package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/daivaya/internal/horoscope"
)

// Handler holds API route handlers.
type Handler struct {
	svc *horoscope.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *horoscope.Service) *Handler {
	return &Handler{svc: svc}
}

func idempotencyKey(r *http.Request) string {
	return r.Header.Get("Idempotency-Key")
}

// Register handles POST /register.
//
//	@Summary		Create an account and grant the signup credits
//	@Tags			accounts
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CredentialsRequest	true	"Credentials"
//	@Success		201		{object}	RegisterResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Router			/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.svc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, RegisterResponse{Message: "User registered successfully.", User: u})
}

// Login handles POST /login.
//
//	@Summary		Sign in with email and password
//	@Tags			accounts
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CredentialsRequest	true	"Credentials"
//	@Success		200		{object}	LoginResponse
//	@Failure		401		{object}	errResponse
//	@Router			/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sess, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Message: "Login successful.", Session: sess})
}

// ResetPassword handles POST /reset_password.
//
//	@Summary		Send a password recovery mail
//	@Tags			accounts
//	@Accept			json
//	@Param			body	body	ResetPasswordRequest	true	"Email"
//	@Success		202
//	@Router			/reset_password [post]
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.ResetPassword(r.Context(), req.Email, req.RedirectTo); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"message": "If the address is registered, a recovery mail is on its way."})
}

// CalculateCharts handles POST /calculate_charts.
//
//	@Summary		Compute the rasi and navamsa charts of a birth
//	@Tags			charts
//	@Accept			json
//	@Produce		json
//	@Param			body	body		BirthRequest	true	"Birth"
//	@Success		200		{object}	ChartResponse
//	@Failure		400		{object}	errResponse
//	@Router			/calculate_charts [post]
func (h *Handler) CalculateCharts(w http.ResponseWriter, r *http.Request) {
	var req BirthRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	v, err := h.svc.Chart(r.Context(), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// GenerateReading handles POST /generate_reading.
//
//	@Summary		Write the paid reading for a chart pair
//	@Tags			readings
//	@Accept			json
//	@Produce		json
//	@Param			Idempotency-Key	header		string			false	"Charge key"
//	@Param			body			body		ReadingRequest	true	"Charts"
//	@Success		200				{object}	ReadingResponse
//	@Failure		402				{object}	errResponse
//	@Failure		502				{object}	errResponse
//	@Security		BearerAuth
//	@Router			/generate_reading [post]
func (h *Handler) GenerateReading(w http.ResponseWriter, r *http.Request) {
	var req ReadingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.svc.GenerateReading(r.Context(), userFrom(r), req, idempotencyKey(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// DeductPDFCredit handles POST /deduct_pdf_credit.
//
//	@Summary		Charge the PDF export price
//	@Tags			credits
//	@Produce		json
//	@Param			Idempotency-Key	header		string	false	"Charge key"
//	@Success		200				{object}	ChargeResponse
//	@Failure		402				{object}	errResponse
//	@Security		BearerAuth
//	@Router			/deduct_pdf_credit [post]
func (h *Handler) DeductPDFCredit(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.DeductPDF(r.Context(), userFrom(r), idempotencyKey(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ChargeResponse{Charged: -e.Amount, Balance: e.Balance})
}

// Credits handles GET /credits.
//
//	@Summary		Balance and recent ledger entries
//	@Tags			credits
//	@Produce		json
//	@Param			limit	query		int	false	"Entries to return"
//	@Success		200		{object}	horoscope.Credits
//	@Security		BearerAuth
//	@Router			/credits [get]
func (h *Handler) Credits(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	c, err := h.svc.Credits(r.Context(), userFrom(r), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ListReadings handles GET /readings.
//
//	@Summary		List archived readings, newest first
//	@Tags			readings
//	@Produce		json
//	@Param			limit	query		int	false	"Page size"
//	@Param			offset	query		int	false	"Page offset"
//	@Success		200		{object}	horoscope.ReadingPage
//	@Security		BearerAuth
//	@Router			/readings [get]
func (h *Handler) ListReadings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	page, err := h.svc.ListReadings(r.Context(), userFrom(r), limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetReading handles GET /readings/{id}.
//
//	@Summary		Get one archived reading
//	@Tags			readings
//	@Produce		json
//	@Param			id	path		string	true	"Reading id"
//	@Success		200	{object}	models.Reading
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/readings/{id} [get]
func (h *Handler) GetReading(w http.ResponseWriter, r *http.Request) {
	rd, err := h.svc.GetReading(r.Context(), userFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("ETag", `"`+rd.Checksum+`"`)
	writeJSON(w, http.StatusOK, rd)
}

// PreparePorondam handles POST /prepare_porondam.
//
//	@Summary		Compute both partners' charts for confirmation
//	@Tags			porondam
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PairRequest	true	"Births"
//	@Success		200		{object}	horoscope.Prepared
//	@Failure		400		{object}	errResponse
//	@Router			/prepare_porondam [post]
func (h *Handler) PreparePorondam(w http.ResponseWriter, r *http.Request) {
	var req PairRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.svc.PreparePorondam(r.Context(), req.pair())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CalculatePorondam handles POST /calculate_porondam.
//
//	@Summary		Run the compatibility checks and write the paid report
//	@Tags			porondam
//	@Accept			json
//	@Produce		json
//	@Param			Idempotency-Key	header		string		false	"Charge key"
//	@Param			body			body		PairRequest	true	"Births"
//	@Success		200				{object}	ReadingResponse
//	@Failure		402				{object}	errResponse
//	@Security		BearerAuth
//	@Router			/calculate_porondam [post]
func (h *Handler) CalculatePorondam(w http.ResponseWriter, r *http.Request) {
	var req PairRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.svc.MatchPorondam(r.Context(), userFrom(r), req.pair(), idempotencyKey(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
