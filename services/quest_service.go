package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"limitfree/models"
	"limitfree/repository"
	"limitfree/utils"
)

// maxConcurrentTrees bounds parallel LLM calls in GenerateAll.
const maxConcurrentTrees = 3

const questSystemPrompt = `You design quest trees that help a young person explore a possible future.
Given one "passion shuttle" (a direction to explore), reply with a single JSON object:
{"title":"...","description":"...","missions":[{"title":"...","description":"...","difficulty":"easy|medium|hard",
"quests":[{"title":"...","description":"...","difficulty":"easy|medium|hard"}]}]}
Use 3 missions with 2 to 4 quests each. Start easy and end hard. Reply with JSON only.`

// QuestService generates quest trees for passion shuttles and tracks quest progress.
type QuestService interface {
	GenerateTree(ctx context.Context, userID string, shuttleID uint) (*models.QuestTree, error)
	GenerateAll(ctx context.Context, userID string) ([]*models.QuestTree, error)
	GetTree(ctx context.Context, treeID uint) (*models.QuestTree, error)
	ListTrees(ctx context.Context, userID string) ([]*models.QuestTree, error)
	CompleteQuest(ctx context.Context, questID uint, userID string) (*models.Quest, error)
	SkipQuest(ctx context.Context, questID uint, userID string) (*models.Quest, error)
}

type questService struct {
	quests   repository.QuestRepository
	shuttles repository.ShuttleRepository
	quota    guestQuota
	llm      LLMClient
	log      *zap.Logger
}

// NewQuestService creates a new instance of QuestService.
func NewQuestService(
	quests repository.QuestRepository,
	shuttles repository.ShuttleRepository,
	quotaRepo repository.QuotaRepository,
	llm LLMClient,
	guestLimit func() int,
	log *zap.Logger,
) QuestService {
	return &questService{
		quests:   quests,
		shuttles: shuttles,
		quota:    guestQuota{repo: quotaRepo, limit: guestLimit},
		llm:      llm,
		log:      log.Named("QuestService"),
	}
}

// questDraft is a quest before it is stored.
type questDraft struct {
	Title       string
	Description string
	Difficulty  models.Difficulty
	Children    []questDraft
}

type treeDraft struct {
	Title       string
	Description string
	Missions    []questDraft
}

// GenerateTree returns the shuttle's quest tree, creating it on first call.
func (s *questService) GenerateTree(ctx context.Context, userID string, shuttleID uint) (*models.QuestTree, error) {
	log := s.log.With(zap.String("user_id", userID), zap.Uint("shuttle_id", shuttleID))

	shuttle, err := s.shuttles.GetByID(ctx, shuttleID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shuttle ID %d: %w", shuttleID, err)
	}
	if shuttle == nil {
		return nil, fmt.Errorf("shuttle %d: %w", shuttleID, ErrNotFound)
	}
	if shuttle.UserID != userID {
		log.Warn("Unauthorized quest tree generation", zap.String("owner", shuttle.UserID))
		return nil, fmt.Errorf("shuttle %d: %w", shuttleID, ErrUnauthorized)
	}

	existing, err := s.quests.GetTreeByShuttleID(ctx, shuttleID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up tree for shuttle ID %d: %w", shuttleID, err)
	}
	if existing != nil {
		return existing, nil
	}

	if err := s.quota.reserve(ctx, userID); err != nil {
		return nil, err
	}
	draft, err := s.fromLLM(ctx, shuttle)
	if err != nil {
		log.Warn("Falling back to built-in quest tree", zap.Error(err))
		draft = fallbackTree(shuttle)
		if err := s.quota.release(ctx, userID); err != nil {
			log.Warn("Failed to release guest generation", zap.Error(err))
		}
	}

	tree, err := s.persist(ctx, userID, shuttleID, draft)
	if err != nil {
		errMsg := fmt.Sprintf("failed to store quest tree for shuttle ID %d", shuttleID)
		log.Error(errMsg, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	log.Info("Generated quest tree", zap.Uint("tree_id", tree.ID), zap.Int("quests", len(tree.Quests)))
	return tree, nil
}

// GenerateAll builds a tree for every shuttle the user owns, a few at a time.
// Shuttles a guest has no generations left for are skipped; ErrQuotaExceeded
// is returned only when that leaves no tree at all. Any other failure aborts
// the batch, but trees already stored stay and are returned by the next call.
func (s *questService) GenerateAll(ctx context.Context, userID string) ([]*models.QuestTree, error) {
	shuttles, err := s.shuttles.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shuttles for userID %s: %w", userID, err)
	}
	if len(shuttles) == 0 {
		return nil, fmt.Errorf("no shuttles for user %s: %w", userID, ErrNotFound)
	}

	trees := make([]*models.QuestTree, len(shuttles))
	var quotaErr error
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentTrees)
	for i, sh := range shuttles {
		g.Go(func() error {
			tree, err := s.GenerateTree(gctx, userID, sh.ID)
			if errors.Is(err, ErrQuotaExceeded) {
				mu.Lock()
				quotaErr = err
				mu.Unlock()
				return nil
			}
			if err != nil {
				return err
			}
			trees[i] = tree
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]*models.QuestTree, 0, len(trees))
	for _, tree := range trees {
		if tree != nil {
			out = append(out, tree)
		}
	}
	if quotaErr != nil {
		if len(out) == 0 {
			return nil, quotaErr
		}
		s.log.Info("Skipped shuttles over the guest quota",
			zap.String("user_id", userID),
			zap.Int("generated", len(out)),
			zap.Int("skipped", len(shuttles)-len(out)))
	}
	return out, nil
}

func (s *questService) GetTree(ctx context.Context, treeID uint) (*models.QuestTree, error) {
	tree, err := s.quests.GetTreeByID(ctx, treeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quest tree ID %d: %w", treeID, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("quest tree %d: %w", treeID, ErrNotFound)
	}
	return tree, nil
}

func (s *questService) ListTrees(ctx context.Context, userID string) ([]*models.QuestTree, error) {
	trees, err := s.quests.GetTreesByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quest trees for userID %s: %w", userID, err)
	}
	return trees, nil
}

// loadOwned fetches a quest and its tree and checks that userID owns them.
func (s *questService) loadOwned(ctx context.Context, questID uint, userID string) (*models.Quest, *models.QuestTree, error) {
	quest, err := s.quests.GetQuestByID(ctx, questID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch quest ID %d: %w", questID, err)
	}
	if quest == nil {
		return nil, nil, fmt.Errorf("quest %d: %w", questID, ErrNotFound)
	}
	tree, err := s.quests.GetTreeByID(ctx, quest.TreeID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch tree ID %d for quest ID %d: %w", quest.TreeID, questID, err)
	}
	if tree == nil {
		return nil, nil, fmt.Errorf("tree for quest %d: %w", questID, ErrNotFound)
	}
	if tree.UserID != userID {
		s.log.Warn("Unauthorized quest update",
			zap.String("user_id", userID),
			zap.Uint("quest_id", questID),
			zap.String("owner", tree.UserID))
		return nil, nil, fmt.Errorf("quest %d: %w", questID, ErrUnauthorized)
	}
	return quest, tree, nil
}

// CompleteQuest marks a quest completed. A child quest needs its parent
// completed first. Completing an already completed quest is a no-op.
func (s *questService) CompleteQuest(ctx context.Context, questID uint, userID string) (*models.Quest, error) {
	quest, tree, err := s.loadOwned(ctx, questID, userID)
	if err != nil {
		return nil, err
	}
	if quest.Status == models.QuestStatusCompleted {
		return quest, nil
	}
	if quest.ParentID != nil {
		parent := findQuest(tree, *quest.ParentID)
		if parent == nil || parent.Status != models.QuestStatusCompleted {
			return nil, fmt.Errorf("quest %d: %w", questID, ErrParentIncomplete)
		}
	}

	quest.Status = models.QuestStatusCompleted
	quest.CompletedAt.Time = time.Now()
	quest.CompletedAt.Valid = true
	if err := s.quests.UpdateQuest(ctx, quest); err != nil {
		return nil, fmt.Errorf("failed to complete quest ID %d: %w", questID, err)
	}
	s.log.Info("Quest completed", zap.String("user_id", userID), zap.Uint("quest_id", questID))

	if err := s.refreshTree(ctx, tree, quest); err != nil {
		return nil, err
	}
	return quest, nil
}

// SkipQuest marks a pending quest skipped.
func (s *questService) SkipQuest(ctx context.Context, questID uint, userID string) (*models.Quest, error) {
	quest, tree, err := s.loadOwned(ctx, questID, userID)
	if err != nil {
		return nil, err
	}
	switch quest.Status {
	case models.QuestStatusSkipped:
		return quest, nil
	case models.QuestStatusCompleted:
		return nil, fmt.Errorf("quest %d: %w", questID, ErrAlreadyCompleted)
	}

	quest.Status = models.QuestStatusSkipped
	quest.CompletedAt.Valid = false
	if err := s.quests.UpdateQuest(ctx, quest); err != nil {
		return nil, fmt.Errorf("failed to skip quest ID %d: %w", questID, err)
	}
	s.log.Info("Quest skipped", zap.String("user_id", userID), zap.Uint("quest_id", questID))

	if err := s.refreshTree(ctx, tree, quest); err != nil {
		return nil, err
	}
	return quest, nil
}

// refreshTree completes the tree once no quest is left pending. updated
// replaces the stale copy of that quest in tree.Quests.
func (s *questService) refreshTree(ctx context.Context, tree *models.QuestTree, updated *models.Quest) error {
	if tree.Status == models.QuestTreeStatusCompleted {
		return nil
	}
	for i := range tree.Quests {
		q := &tree.Quests[i]
		if q.ID == updated.ID {
			q.Status = updated.Status
		}
		if q.Status == models.QuestStatusPending {
			return nil
		}
	}

	tree.Status = models.QuestTreeStatusCompleted
	tree.CompletedAt.Time = time.Now()
	tree.CompletedAt.Valid = true
	if err := s.quests.UpdateTree(ctx, tree); err != nil {
		return fmt.Errorf("failed to complete quest tree ID %d: %w", tree.ID, err)
	}
	s.log.Info("Quest tree completed", zap.String("user_id", tree.UserID), zap.Uint("tree_id", tree.ID))
	return nil
}

func findQuest(tree *models.QuestTree, id uint) *models.Quest {
	for i := range tree.Quests {
		if tree.Quests[i].ID == id {
			return &tree.Quests[i]
		}
	}
	return nil
}

func (s *questService) fromLLM(ctx context.Context, shuttle *models.PassionShuttle) (treeDraft, error) {
	prompt := fmt.Sprintf("Passion shuttle: %s\nDescription: %s\nCareer areas: %s\nWhy it fits: %s\n",
		shuttle.Title, shuttle.Description, strings.Join(shuttle.CareerAreas, ", "), shuttle.MatchReason)
	reply, err := s.llm.Complete(ctx, questSystemPrompt, prompt)
	if err != nil {
		return treeDraft{}, err
	}
	return parseQuestTree(reply, shuttle.Title)
}

func parseQuestTree(reply, defaultTitle string) (treeDraft, error) {
	doc, err := utils.ParseJSONSafe(reply)
	if err != nil {
		return treeDraft{}, fmt.Errorf("%w: %v", ErrBadLLMOutput, err)
	}

	root := gjson.Parse(doc)
	draft := treeDraft{
		Title:       strings.TrimSpace(root.Get("title").String()),
		Description: strings.TrimSpace(root.Get("description").String()),
	}
	if draft.Title == "" {
		draft.Title = defaultTitle
	}

	for _, m := range root.Get("missions").Array() {
		mission, ok := parseQuestDraft(m)
		if !ok {
			continue
		}
		for _, c := range m.Get("quests").Array() {
			if child, ok := parseQuestDraft(c); ok {
				mission.Children = append(mission.Children, child)
			}
		}
		draft.Missions = append(draft.Missions, mission)
	}
	if len(draft.Missions) == 0 {
		return treeDraft{}, fmt.Errorf("%w: no missions", ErrBadLLMOutput)
	}
	return draft, nil
}

func parseQuestDraft(v gjson.Result) (questDraft, bool) {
	title := strings.TrimSpace(v.Get("title").String())
	if title == "" {
		return questDraft{}, false
	}
	return questDraft{
		Title:       title,
		Description: strings.TrimSpace(v.Get("description").String()),
		Difficulty:  ParseDifficulty(v.Get("difficulty").String()),
	}, true
}

// ParseDifficulty maps free text onto a Difficulty, defaulting to medium.
func ParseDifficulty(s string) models.Difficulty {
	switch models.Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case models.DifficultyEasy:
		return models.DifficultyEasy
	case models.DifficultyHard:
		return models.DifficultyHard
	}
	return models.DifficultyMedium
}

func fallbackTree(shuttle *models.PassionShuttle) treeDraft {
	area := shuttle.Title
	if len(shuttle.CareerAreas) > 0 {
		area = shuttle.CareerAreas[0]
	}
	return treeDraft{
		Title:       shuttle.Title,
		Description: "A starter map for exploring " + shuttle.Title + ".",
		Missions: []questDraft{
			{
				Title: "Scout the territory", Difficulty: models.DifficultyEasy,
				Description: "Find out what " + area + " looks like day to day.",
				Children: []questDraft{
					{Title: "Watch a day-in-the-life video about " + area, Difficulty: models.DifficultyEasy},
					{Title: "List three skills " + area + " relies on", Difficulty: models.DifficultyEasy},
				},
			},
			{
				Title: "Run a test flight", Difficulty: models.DifficultyMedium,
				Description: "Try a small hands-on project.",
				Children: []questDraft{
					{Title: "Finish a beginner tutorial", Difficulty: models.DifficultyMedium},
					{Title: "Share what you made with a friend", Difficulty: models.DifficultyMedium},
				},
			},
			{
				Title: "Make contact", Difficulty: models.DifficultyHard,
				Description: "Learn from someone already on this path.",
				Children: []questDraft{
					{Title: "Interview someone working in " + area, Difficulty: models.DifficultyHard},
					{Title: "Write down your next three steps", Difficulty: models.DifficultyMedium},
				},
			},
		},
	}
}

// persist stores the tree, then each mission followed by its children so
// that children can reference their parent's ID.
func (s *questService) persist(ctx context.Context, userID string, shuttleID uint, draft treeDraft) (*models.QuestTree, error) {
	tree := &models.QuestTree{
		UserID:      userID,
		ShuttleID:   shuttleID,
		Title:       draft.Title,
		Description: draft.Description,
		Status:      models.QuestTreeStatusActive,
	}
	if err := s.quests.CreateTree(ctx, tree); err != nil {
		return nil, err
	}

	order := 0
	newQuest := func(d questDraft, parentID *uint) *models.Quest {
		order++
		return &models.Quest{
			TreeID:       tree.ID,
			ParentID:     parentID,
			Title:        d.Title,
			Description:  d.Description,
			Difficulty:   d.Difficulty,
			EnergyReward: EnergyForDifficulty(d.Difficulty),
			Status:       models.QuestStatusPending,
			Order:        order,
		}
	}

	for _, m := range draft.Missions {
		mission := newQuest(m, nil)
		if err := s.quests.CreateQuest(ctx, mission); err != nil {
			return nil, err
		}
		tree.Quests = append(tree.Quests, *mission)
		for _, c := range m.Children {
			parentID := mission.ID
			child := newQuest(c, &parentID)
			if err := s.quests.CreateQuest(ctx, child); err != nil {
				return nil, err
			}
			tree.Quests = append(tree.Quests, *child)
		}
	}
	return tree, nil
}
