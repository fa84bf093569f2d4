package options

import (
	"context"
	"log/slog"

	"github.com/WessleyAI/whachapay/engine/domain"
	"github.com/WessleyAI/whachapay/pkg/natsutil"
	"github.com/nats-io/nats.go"
)

// DefaultSubject is the NATS subject the Options Service listens on.
const DefaultSubject = "whachapay.options.resolve"

// Request is the NATS request body.
type Request struct {
	Year     string           `json:"year"`
	Make     string           `json:"make"`
	Model    string           `json:"model"`
	Selected domain.FieldName `json:"selected"`
}

func requestFrom(snap domain.SelectionSnapshot) Request {
	return Request{Year: snap.Year, Make: snap.Make, Model: snap.Model, Selected: snap.Selected}
}

func (r Request) snapshot() (domain.SelectionSnapshot, error) {
	sel, err := domain.ParseField(string(r.Selected))
	if err != nil {
		return domain.SelectionSnapshot{}, err
	}
	return domain.SelectionSnapshot{Year: r.Year, Make: r.Make, Model: r.Model, Selected: sel}, nil
}

// natsReply carries either a response or an error message.
type natsReply struct {
	Make  *List  `json:"make,omitempty"`
	Model *List  `json:"model,omitempty"`
	Error string `json:"error,omitempty"`
}

// ServeNATS answers option requests on subject until the subscription is
// drained.
func ServeNATS(nc *nats.Conn, subject string, svc Resolver, log *slog.Logger) (*nats.Subscription, error) {
	if log == nil {
		log = slog.Default()
	}
	return natsutil.Reply(nc, subject, func(ctx context.Context, req Request) natsReply {
		snap, err := req.snapshot()
		if err != nil {
			return natsReply{Error: err.Error()}
		}
		upd, err := svc.Resolve(ctx, snap)
		if err != nil {
			log.Error("options resolve failed", "selected", snap.Selected, "err", err)
			return natsReply{Error: "option lookup failed"}
		}
		r := newResponse(upd)
		return natsReply{Make: r.Make, Model: r.Model}
	})
}

// NATSClient queries the Options Service over NATS request/reply.
type NATSClient struct {
	nc      *nats.Conn
	subject string
	log     *slog.Logger
}

// NewNATSClient creates a NATSClient. An empty subject uses DefaultSubject.
func NewNATSClient(nc *nats.Conn, subject string, log *slog.Logger) *NATSClient {
	if subject == "" {
		subject = DefaultSubject
	}
	if log == nil {
		log = slog.Default()
	}
	return &NATSClient{nc: nc, subject: subject, log: log}
}

// RemoteError is an error reported by the responder.
type RemoteError string

func (e RemoteError) Error() string { return "options service: " + string(e) }

// Options implements cascade.OptionsService.
func (c *NATSClient) Options(ctx context.Context, snap domain.SelectionSnapshot) (*domain.OptionsUpdate, error) {
	reply, err := natsutil.Request[Request, natsReply](ctx, c.nc, c.subject, requestFrom(snap))
	if err != nil {
		c.log.Warn("options request failed", "selected", snap.Selected, "err", err)
		return nil, err
	}
	if reply.Error != "" {
		return nil, RemoteError(reply.Error)
	}
	return Response{Make: reply.Make, Model: reply.Model}.Update(), nil
}
