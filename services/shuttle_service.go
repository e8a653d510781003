package services

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"limitfree/models"
	"limitfree/repository"
	"limitfree/scoring"
	"limitfree/utils"
)

const (
	minShuttles = 3
	maxShuttles = 5
)

const shuttleSystemPrompt = `You are a career exploration guide for teenagers and young adults.
Given a person's interest code and personality profile, suggest between 3 and 5
"passion shuttles": concrete directions they could explore next.
Reply with a single JSON object of the form
{"shuttles":[{"title":"...","description":"...","career_areas":["..."],"match_reason":"..."}]}
and nothing else.`

// ShuttleService generates and lists passion shuttles.
type ShuttleService interface {
	Generate(ctx context.Context, userID string) ([]*models.PassionShuttle, error)
	ListForUser(ctx context.Context, userID string) ([]*models.PassionShuttle, error)
}

type shuttleService struct {
	assessments repository.AssessmentRepository
	shuttles    repository.ShuttleRepository
	quests      repository.QuestRepository
	quota       guestQuota
	llm         LLMClient
	banks       QuestionBanks
	cache       *lru.Cache[string, []models.PassionShuttle]
	log         *zap.Logger
}

// NewShuttleService creates a ShuttleService. cacheSize <= 0 disables the
// suggestion cache; guestLimit is read on every generation.
func NewShuttleService(
	assessments repository.AssessmentRepository,
	shuttles repository.ShuttleRepository,
	quests repository.QuestRepository,
	quotaRepo repository.QuotaRepository,
	llm LLMClient,
	banks QuestionBanks,
	cacheSize int,
	guestLimit func() int,
	log *zap.Logger,
) ShuttleService {
	var cache *lru.Cache[string, []models.PassionShuttle]
	if cacheSize > 0 {
		// lru.New only fails on a non-positive size.
		cache, _ = lru.New[string, []models.PassionShuttle](cacheSize)
	}
	return &shuttleService{
		assessments: assessments,
		shuttles:    shuttles,
		quests:      quests,
		quota:       guestQuota{repo: quotaRepo, limit: guestLimit},
		llm:         llm,
		banks:       banks,
		cache:       cache,
		log:         log.Named("ShuttleService"),
	}
}

// Generate builds shuttles from the user's latest interest and trait results
// and replaces any shuttles stored before, retiring their quest trees.
func (s *shuttleService) Generate(ctx context.Context, userID string) ([]*models.PassionShuttle, error) {
	log := s.log.With(zap.String("user_id", userID))

	interest, trait, err := s.latestResults(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := cacheKey(interest, trait)
	var drafts []models.PassionShuttle
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			log.Debug("Shuttle cache hit", zap.String("key", key))
			drafts = cached
		}
	}

	if drafts == nil {
		if err := s.quota.reserve(ctx, userID); err != nil {
			return nil, err
		}
		drafts, err = s.fromLLM(ctx, interest, trait)
		if err != nil {
			log.Warn("Falling back to built-in shuttles", zap.Error(err))
			drafts = s.fallback(interest, trait)
			if err := s.quota.release(ctx, userID); err != nil {
				log.Warn("Failed to release guest generation", zap.Error(err))
			}
		} else if s.cache != nil {
			s.cache.Add(key, drafts)
		}
	}

	previous, err := s.shuttles.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list current shuttles for userID %s: %w", userID, err)
	}

	shuttles := make([]*models.PassionShuttle, len(drafts))
	for i, d := range drafts {
		d.CareerAreas = append([]string(nil), d.CareerAreas...)
		d.InterestCode = interest.Code
		d.TopTraits = strings.Join(topTraits(trait), "")
		shuttles[i] = &d
	}
	if err := s.shuttles.ReplaceForUser(ctx, userID, shuttles); err != nil {
		errMsg := fmt.Sprintf("failed to store shuttles for userID %s", userID)
		log.Error(errMsg, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	s.retireTrees(ctx, log, previous)
	log.Info("Generated passion shuttles", zap.Int("count", len(shuttles)))
	return shuttles, nil
}

// retireTrees soft-deletes the quest trees of replaced shuttles so they drop
// out of tree listings and progress. Failures are logged and skipped.
func (s *shuttleService) retireTrees(ctx context.Context, log *zap.Logger, replaced []*models.PassionShuttle) {
	for _, sh := range replaced {
		tree, err := s.quests.GetTreeByShuttleID(ctx, sh.ID)
		if err != nil {
			log.Warn("Failed to look up tree of replaced shuttle", zap.Uint("shuttle_id", sh.ID), zap.Error(err))
			continue
		}
		if tree == nil {
			continue
		}
		if err := s.quests.DeleteTree(ctx, tree.ID, false); err != nil {
			log.Warn("Failed to retire quest tree", zap.Uint("tree_id", tree.ID), zap.Error(err))
			continue
		}
		log.Info("Retired quest tree of replaced shuttle", zap.Uint("tree_id", tree.ID), zap.Uint("shuttle_id", sh.ID))
	}
}

func (s *shuttleService) ListForUser(ctx context.Context, userID string) ([]*models.PassionShuttle, error) {
	shuttles, err := s.shuttles.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shuttles for userID %s: %w", userID, err)
	}
	return shuttles, nil
}

func (s *shuttleService) latestResults(ctx context.Context, userID string) (*scoring.InterestResult, *scoring.TraitResult, error) {
	ir, err := s.assessments.GetLatestResult(ctx, userID, models.ModelInterest)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load interest result for userID %s: %w", userID, err)
	}
	tr, err := s.assessments.GetLatestResult(ctx, userID, models.ModelTrait)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load trait result for userID %s: %w", userID, err)
	}
	if ir == nil || ir.Interest == nil || tr == nil || tr.Trait == nil {
		return nil, nil, ErrMissingResults
	}
	return ir.Interest, tr.Trait, nil
}

func cacheKey(interest *scoring.InterestResult, trait *scoring.TraitResult) string {
	return interest.Code + "|" + strings.Join(trait.Ranked, "")
}

func topTraits(trait *scoring.TraitResult) []string {
	if len(trait.Ranked) < 2 {
		return trait.Ranked
	}
	return trait.Ranked[:2]
}

func (s *shuttleService) fromLLM(ctx context.Context, interest *scoring.InterestResult, trait *scoring.TraitResult) ([]models.PassionShuttle, error) {
	reply, err := s.llm.Complete(ctx, shuttleSystemPrompt, s.buildPrompt(interest, trait))
	if err != nil {
		return nil, err
	}
	return parseShuttles(reply)
}

// buildPrompt renders the profile the model works from.
func (s *shuttleService) buildPrompt(interest *scoring.InterestResult, trait *scoring.TraitResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Interest code: %s\n", interest.Code)
	fmt.Fprintf(&b, "Consistency: %s (%d/3)\n", interest.ConsistencyLabel, interest.Consistency)
	fmt.Fprintf(&b, "Differentiation: %d\n", interest.Differentiation)
	b.WriteString("Interest scores:")
	for _, l := range interest.Sorted {
		fmt.Fprintf(&b, " %s=%d", l, interest.Scores[l])
	}
	b.WriteString("\nTraits (strongest first):")
	for _, l := range trait.Ranked {
		fmt.Fprintf(&b, " %s=%d(%s)", s.traitName(l), trait.Scores[l], trait.Levels[l])
	}
	c := trait.Careers
	fmt.Fprintf(&b, "\nCareer areas for %s: %s\n", s.traitName(c.PrimaryTrait), strings.Join(c.Primary, ", "))
	fmt.Fprintf(&b, "Career areas for %s: %s\n", s.traitName(c.SecondaryTrait), strings.Join(c.Secondary, ", "))
	fmt.Fprintf(&b, "Combined career areas: %s\n", strings.Join(c.Combined, ", "))
	return b.String()
}

func (s *shuttleService) traitName(label string) string {
	for _, d := range s.banks.Trait.Dimensions() {
		if d.Label == label {
			return d.Name
		}
	}
	return label
}

// parseShuttles reads shuttles[] from a model reply, keeping at most maxShuttles.
func parseShuttles(reply string) ([]models.PassionShuttle, error) {
	doc, err := utils.ParseJSONSafe(reply)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadLLMOutput, err)
	}

	var out []models.PassionShuttle
	gjson.Get(doc, "shuttles").ForEach(func(_, v gjson.Result) bool {
		title := strings.TrimSpace(v.Get("title").String())
		if title == "" {
			return true
		}
		sh := models.PassionShuttle{
			Title:       title,
			Description: strings.TrimSpace(v.Get("description").String()),
			MatchReason: strings.TrimSpace(v.Get("match_reason").String()),
			CareerAreas: []string{},
		}
		for _, c := range v.Get("career_areas").Array() {
			if name := strings.TrimSpace(c.String()); name != "" {
				sh.CareerAreas = append(sh.CareerAreas, name)
			}
		}
		out = append(out, sh)
		return len(out) < maxShuttles
	})

	if len(out) < minShuttles {
		return nil, fmt.Errorf("%w: got %d shuttles, need at least %d", ErrBadLLMOutput, len(out), minShuttles)
	}
	return out, nil
}

// fallback derives three shuttles straight from the trait career suggestions.
func (s *shuttleService) fallback(interest *scoring.InterestResult, trait *scoring.TraitResult) []models.PassionShuttle {
	c := trait.Careers
	primary, secondary := s.traitName(c.PrimaryTrait), s.traitName(c.SecondaryTrait)
	return []models.PassionShuttle{
		{
			Title:       fmt.Sprintf("%s + %s Explorer", primary, secondary),
			Description: "Paths where both of your strongest traits pull in the same direction.",
			CareerAreas: c.Combined,
			MatchReason: fmt.Sprintf("Your interest code is %s and your top traits are %s and %s.", interest.Code, primary, secondary),
		},
		{
			Title:       primary + " Pathfinder",
			Description: "Paths that lean on your strongest trait.",
			CareerAreas: c.Primary,
			MatchReason: fmt.Sprintf("%s is your highest trait score.", primary),
		},
		{
			Title:       secondary + " Voyager",
			Description: "Paths that lean on your second strongest trait.",
			CareerAreas: c.Secondary,
			MatchReason: fmt.Sprintf("%s is your second highest trait score.", secondary),
		},
	}
}
