package services

import (
	"context"
	"errors"
	"strings"

	"greek-row/chapterhouse/internal/constants"
	"greek-row/chapterhouse/internal/db/repositories"
	"greek-row/chapterhouse/internal/logging"
	"greek-row/chapterhouse/internal/models/dtos"
	gormModels "greek-row/chapterhouse/internal/models/gorm"
)

type ConnectionService struct {
	connections *repositories.ConnectionRepository
	profiles    *repositories.ProfileRepository
	notifier    Notifier
	transitions constants.Transitions[constants.ConnectionStatus]
	baseURL     string
}

func NewConnectionService(
	connections *repositories.ConnectionRepository,
	profiles *repositories.ProfileRepository,
	notifier Notifier,
	baseURL string,
) *ConnectionService {
	return &ConnectionService{
		connections: connections,
		profiles:    profiles,
		notifier:    notifier,
		transitions: constants.ConnectionTransitions,
		baseURL:     strings.TrimRight(baseURL, "/"),
	}
}

// Create sends a connection request from me to the recipient
func (s *ConnectionService) Create(ctx context.Context, me *gormModels.Profile, req dtos.CreateConnectionRequest) (*dtos.ConnectionView, error) {
	recipientID := strings.TrimSpace(req.RecipientID)
	if recipientID == "" {
		return nil, invalid(constants.MsgMissingFields)
	}
	if recipientID == me.ID {
		return nil, invalid("You cannot connect with yourself")
	}

	recipient, err := s.profiles.GetByID(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	if recipient == nil {
		return nil, notFound("Recipient not found")
	}

	existing, err := s.connections.FindBetween(ctx, me.ID, recipientID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, invalid(constants.MsgConnectionExists)
	}

	c := &gormModels.Connection{
		RequesterID: me.ID,
		RecipientID: recipientID,
		Status:      constants.ConnectionPending,
	}
	if msg := strings.TrimSpace(req.Message); msg != "" {
		c.Message = &msg
	}
	if err := s.connections.Create(ctx, c); err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, ConnectionRequestJob(me, recipientID, s.baseURL))

	c.Requester = me
	c.Recipient = recipient
	v := toConnectionView(c, me.ID)
	return &v, nil
}

func (s *ConnectionService) List(ctx context.Context, me *gormModels.Profile, status string) ([]dtos.ConnectionView, error) {
	st := constants.ConnectionStatus(strings.TrimSpace(status))
	if st != "" && st != constants.ConnectionPending && !st.PatchTarget() {
		return nil, invalidf("Invalid status filter %q", status)
	}

	conns, err := s.connections.ListForUser(ctx, me.ID, st)
	if err != nil {
		return nil, err
	}
	out := make([]dtos.ConnectionView, 0, len(conns))
	for i := range conns {
		out = append(out, toConnectionView(&conns[i], me.ID))
	}
	return out, nil
}

// UpdateStatus moves a connection through the transition table. Only
// participants see the connection; everyone else gets a 404.
func (s *ConnectionService) UpdateStatus(ctx context.Context, me *gormModels.Profile, id string, req dtos.UpdateConnectionRequest) (*dtos.ConnectionView, error) {
	target := constants.ConnectionStatus(strings.TrimSpace(req.Status))
	if !target.PatchTarget() {
		return nil, invalid(constants.MsgInvalidStatus)
	}

	c, err := s.connections.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil || !c.Involves(me.ID) {
		return nil, notFound("Connection not found")
	}
	// answering a request belongs to the recipient; either side may block
	if target != constants.ConnectionBlocked && me.ID != c.RecipientID {
		return nil, forbidden(constants.MsgConnectionAnswer)
	}
	if !s.transitions.Allowed(c.Status, target) {
		return nil, invalidf("Cannot change connection from %s to %s", c.Status, target)
	}

	previous := c.Status
	if err := s.connections.UpdateStatus(ctx, c.ID, target); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("Connection not found")
		}
		return nil, err
	}
	c.Status = target

	logging.FromContext(ctx).Infow("Connection status changed",
		"connection_id", c.ID, "from", previous, "to", target)

	if target == constants.ConnectionAccepted && previous != constants.ConnectionAccepted {
		s.notifier.Publish(ctx, ConnectionAcceptedJob(me, c.RequesterID, s.baseURL))
	}

	v := toConnectionView(c, me.ID)
	return &v, nil
}

func (s *ConnectionService) Delete(ctx context.Context, me *gormModels.Profile, id string) error {
	c, err := s.connections.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil || !c.Involves(me.ID) {
		return notFound("Connection not found")
	}
	if err := s.connections.Delete(ctx, c.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("Connection not found")
		}
		return err
	}
	return nil
}
