package rigs

import (
	"context"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"nhgate/internal/logging"
	"nhgate/internal/repository/api/nicehash"
)

var ErrNotFound = errors.New("rig not found")

type API interface {
	Rigs(ctx context.Context) (nicehash.RawMessage, error)
}

type Service struct {
	api API
}

func New(api API) *Service {
	return &Service{api: api}
}

// Rig is the part of a mining rig the front-ends show.
type Rig struct {
	ID          string
	Name        string
	MinerStatus string
}

// List returns every rig in the root group.
func (s *Service) List(ctx context.Context) ([]Rig, error) {
	raw, err := s.api.Rigs(ctx)
	if err != nil {
		return nil, logging.WrapError(ctx, err)
	}

	var rigs []Rig
	gjson.GetBytes(raw, "miningRigs").ForEach(func(_, r gjson.Result) bool {
		rigs = append(rigs, Rig{
			ID:          r.Get("rigId").String(),
			Name:        r.Get("name").String(),
			MinerStatus: r.Get("minerStatus").String(),
		})
		return true
	})

	return rigs, nil
}

// Status returns the minerStatus of the rig called name as raw JSON. When
// several rigs share a name the last one listed wins.
func (s *Service) Status(ctx context.Context, name string) (nicehash.RawMessage, error) {
	ctx = logging.WithRig(ctx, name)

	raw, err := s.api.Rigs(ctx)
	if err != nil {
		return nil, logging.WrapError(ctx, err)
	}

	var status gjson.Result
	found := false
	gjson.GetBytes(raw, "miningRigs").ForEach(func(_, r gjson.Result) bool {
		if r.Get("name").String() == name {
			status = r.Get("minerStatus")
			found = true
		}
		return true
	})
	if !found {
		return nil, logging.WrapError(ctx, ErrNotFound)
	}
	if !status.Exists() {
		return nicehash.RawMessage("null"), nil
	}

	return nicehash.RawMessage(status.Raw), nil
}
