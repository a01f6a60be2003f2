package horoscope

import (
	"context"

	"github.com/starford/daivaya/internal/identity"
	"github.com/starford/daivaya/internal/models"
	"github.com/starford/daivaya/internal/porondam"
	"github.com/starford/daivaya/internal/prompt"
)

// Compatibility runs the compatibility checks without writing a reading. It
// is free.
func (s *Service) Compatibility(ctx context.Context, p Pair) (*PorondamReport, error) {
	defer s.observe("compatibility", s.Now())
	pr, err := s.compatibility(ctx, p)
	if err != nil {
		return nil, s.fail("compatibility", err)
	}
	return pr, nil
}

func (s *Service) compatibility(ctx context.Context, p Pair) (*PorondamReport, error) {
	bride, groom, err := s.computePair(ctx, p)
	if err != nil {
		return nil, err
	}
	report, err := porondam.Match(porondam.FromChart(bride.result), porondam.FromChart(groom.result))
	if err != nil {
		return nil, err
	}
	return &PorondamReport{Bride: bride.result.Summary(), Groom: groom.result.Summary(), Report: report}, nil
}

// MatchPorondam computes both charts, runs the compatibility checks and
// writes the paid narrative. Person1 is the bride.
func (s *Service) MatchPorondam(ctx context.Context, u identity.User, p Pair, key string) (*Outcome, error) {
	defer s.observe("calculate_porondam", s.Now())

	pr, err := s.compatibility(ctx, p)
	if err != nil {
		return nil, s.fail("calculate_porondam", err)
	}
	out, err := s.runPaid(ctx, u, key, paid{
		op:    "calculate_porondam",
		kind:  models.KindPorondam,
		price: s.Prices.Porondam,
		title: pr.Bride.Nakshatra.Name + " and " + pr.Groom.Nakshatra.Name + " porondam",
		prompt: func() (string, error) {
			return s.Prompts.Render(prompt.Porondam, prompt.PorondamData{Bride: pr.Bride, Groom: pr.Groom, Report: pr.Report})
		},
		meta: map[string]any{
			"bride_nakshatra": pr.Bride.Nakshatra.Name,
			"groom_nakshatra": pr.Groom.Nakshatra.Name,
			"passed":          pr.Passed,
			"total":           pr.Total,
		},
	})
	if err != nil {
		return nil, s.fail("calculate_porondam", err)
	}
	out.Report = pr
	return out, nil
}
