package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"ark-trip-service/internal/app"
	"ark-trip-service/internal/domain"
	"ark-trip-service/internal/quiz"
	"ark-trip-service/internal/session"
)

// WSHandler owns the participant websocket surface. One connection gets one
// session.Controller, and every input to that controller (hub events, inbound
// frames, countdown and home-view timers) is serialized through the select
// loop below so the controller never needs its own locking.
type WSHandler struct {
	svc      *app.TripService
	clock    clockwork.Clock
	rules    quiz.Rules
	segments []quiz.Segment
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewWSHandler(svc *app.TripService, clock clockwork.Clock, rules quiz.Rules, segments []quiz.Segment, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		svc:      svc,
		clock:    clock,
		rules:    rules,
		segments: segments,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID    string `json:"questionId"`
	SelectedIndex int    `json:"selectedIndex"`
	Text          string `json:"text"`
}

type messagePayload struct {
	Text string `json:"text"`
}

type viewPayload struct {
	View string `json:"view"`
}

type triggerPayload struct {
	QuestionID string `json:"questionId"`
}

type commandPayload struct {
	Text string `json:"text"`
}

type tripCodePayload struct {
	Code string `json:"code"`
}

func errorFrame(msg string) session.Outbound {
	return session.Outbound{Type: "error", Payload: map[string]string{"message": msg}}
}

// ServeWS upgrades the request, signs the participant in, and runs the
// connection's event loop until the socket closes.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	req := app.JoinRequest{
		Name:  r.URL.Query().Get("name"),
		Phone: r.URL.Query().Get("phone"),
		Code:  r.URL.Query().Get("code"),
	}
	if avatar := r.URL.Query().Get("avatar"); avatar != "" {
		if id, err := strconv.Atoi(avatar); err == nil {
			req.AvatarID = id
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	user, err := h.svc.Join(r.Context(), req)
	if err != nil {
		_ = conn.WriteJSON(errorFrame(err.Error()))
		return
	}

	updates, cancel := h.svc.Subscribe(r.Context())
	defer cancel()

	// The wheel's rand source is not goroutine-safe, so each connection gets
	// its own.
	ctrl := session.New(h.svc, user, h.clock, h.rules, quiz.NewWheel(h.segments), h.log.With().Str("user", user.ID).Logger())

	send := make(chan session.Outbound, 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug().Err(err).Msg("ws write error")
				return
			}
		}
	}()

	inbound := make(chan inboundMessage)
	go func() {
		defer close(inbound)
		for {
			var msg inboundMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			select {
			case inbound <- msg:
			case <-writerDone:
				return
			}
		}
	}()

	for _, frame := range ctrl.Bootstrap() {
		send <- frame
	}

	var roundTimer, homeTimer clockwork.Timer
	roundC := func() <-chan time.Time {
		if roundTimer == nil {
			return nil
		}
		return roundTimer.Chan()
	}
	homeC := func() <-chan time.Time {
		if homeTimer == nil {
			return nil
		}
		return homeTimer.Chan()
	}
	rearm := func() {
		if d, ok := ctrl.Countdown(); ok {
			if roundTimer != nil {
				roundTimer.Stop()
			}
			roundTimer = h.clock.NewTimer(d)
		} else if roundTimer != nil {
			roundTimer.Stop()
			roundTimer = nil
		}
		if d, ok := ctrl.HomePending(); ok {
			if homeTimer != nil {
				homeTimer.Stop()
			}
			homeTimer = h.clock.NewTimer(d)
		}
	}

loop:
	for {
		select {
		case ev, ok := <-updates:
			if !ok {
				break loop
			}
			for _, frame := range ctrl.ApplyEvent(ev) {
				send <- frame
			}
			rearm()
		case msg, ok := <-inbound:
			if !ok {
				break loop
			}
			for _, frame := range h.dispatch(ctrl, r, msg) {
				send <- frame
			}
			rearm()
		case <-roundC():
			roundTimer = nil
			for _, frame := range ctrl.ExpireRound(r.Context()) {
				send <- frame
			}
			rearm()
		case <-homeC():
			homeTimer = nil
			for _, frame := range ctrl.ReturnHome() {
				send <- frame
			}
		case <-writerDone:
			break loop
		}
	}

	cancel()
	close(send)
	<-writerDone
}

// dispatch routes one inbound frame to the controller or, for the host-only
// operations, straight to the service.
func (h *WSHandler) dispatch(ctrl *session.Controller, r *http.Request, msg inboundMessage) []session.Outbound {
	ctx := r.Context()
	switch msg.Type {
	case "answer":
		var p answerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return []session.Outbound{errorFrame("invalid answer payload")}
		}
		frames, err := ctrl.SubmitAnswer(ctx, domain.AnswerSubmission{
			QuestionID:    p.QuestionID,
			SelectedIndex: p.SelectedIndex,
			Text:          p.Text,
		})
		if err != nil {
			return []session.Outbound{errorFrame(err.Error())}
		}
		return frames
	case "spin":
		frames, err := ctrl.Spin(ctx)
		if err != nil {
			return []session.Outbound{errorFrame(err.Error())}
		}
		return frames
	case "message":
		var p messagePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return []session.Outbound{errorFrame("invalid message payload")}
		}
		m, err := ctrl.SendMessage(ctx, p.Text)
		if err != nil {
			return []session.Outbound{errorFrame(err.Error())}
		}
		return []session.Outbound{{Type: "messageSent", Payload: m}}
	case "view":
		var p viewPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return []session.Outbound{errorFrame("invalid view payload")}
		}
		ctrl.SetView(session.View(p.View))
		return nil
	case "trigger":
		if !ctrl.User().IsAdmin {
			return []session.Outbound{errorFrame(domain.ErrNotAdmin.Error())}
		}
		var p triggerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return []session.Outbound{errorFrame("invalid trigger payload")}
		}
		if _, err := h.svc.TriggerQuestion(ctx, p.QuestionID); err != nil {
			return []session.Outbound{errorFrame(err.Error())}
		}
		return nil
	case "closeQuestion":
		if !ctrl.User().IsAdmin {
			return []session.Outbound{errorFrame(domain.ErrNotAdmin.Error())}
		}
		if err := h.svc.ClearQuestion(ctx); err != nil {
			return []session.Outbound{errorFrame(err.Error())}
		}
		return nil
	case "command":
		if !ctrl.User().IsAdmin {
			return []session.Outbound{errorFrame(domain.ErrNotAdmin.Error())}
		}
		var p commandPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return []session.Outbound{errorFrame("invalid command payload")}
		}
		if _, err := h.svc.SendCommand(ctx, p.Text); err != nil {
			return []session.Outbound{errorFrame(err.Error())}
		}
		return nil
	case "clearCommand":
		if !ctrl.User().IsAdmin {
			return []session.Outbound{errorFrame(domain.ErrNotAdmin.Error())}
		}
		if err := h.svc.ClearCommand(ctx); err != nil {
			return []session.Outbound{errorFrame(err.Error())}
		}
		return nil
	case "setTripCode":
		if !ctrl.User().IsAdmin {
			return []session.Outbound{errorFrame(domain.ErrNotAdmin.Error())}
		}
		var p tripCodePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return []session.Outbound{errorFrame("invalid trip code payload")}
		}
		if err := h.svc.SetTripCode(ctx, p.Code); err != nil {
			return []session.Outbound{errorFrame(err.Error())}
		}
		return nil
	case "clearMessages":
		if !ctrl.User().IsAdmin {
			return []session.Outbound{errorFrame(domain.ErrNotAdmin.Error())}
		}
		if err := h.svc.ClearMessages(ctx); err != nil {
			return []session.Outbound{errorFrame(err.Error())}
		}
		return nil
	case "resetLeaderboard":
		if !ctrl.User().IsAdmin {
			return []session.Outbound{errorFrame(domain.ErrNotAdmin.Error())}
		}
		if err := h.svc.ResetLeaderboard(ctx); err != nil {
			return []session.Outbound{errorFrame(err.Error())}
		}
		return nil
	default:
		return []session.Outbound{errorFrame("unsupported message type")}
	}
}
