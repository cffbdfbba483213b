package services

import (
	"context"
	stderrors "errors"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/vytor/studyflash/internal/assistant"
	"github.com/vytor/studyflash/internal/errors"
	"github.com/vytor/studyflash/internal/flashcard"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository"
	"github.com/vytor/studyflash/internal/session"
)

// HistoryQuery narrows a deck's session history. From and To are epoch
// milliseconds; To is exclusive and zero means unbounded.
type HistoryQuery struct {
	From   int64
	To     int64
	Limit  int
	Offset int
}

// StudyService runs study sessions over a deck and records the results.
type StudyService interface {
	Start(ctx context.Context, ownerID, deckID string) (*models.StudySession, error)
	SetLocation(ctx context.Context, ownerID, sessionID string, latitude, longitude float64) error
	Answer(ctx context.Context, ownerID, sessionID string, answer models.Answer) (*models.AnswerOutcome, error)
	// Card returns a card of an active session with its answers stripped.
	Card(ctx context.Context, ownerID, sessionID, cardID string) (*models.Flashcard, error)
	Finish(ctx context.Context, ownerID, sessionID string) (*models.SessionStat, error)
	Abandon(ctx context.Context, ownerID, sessionID string) error
	History(ctx context.Context, ownerID, deckID string, q HistoryQuery) ([]models.SessionStat, error)
	// Stored returns one finished session of the caller.
	Stored(ctx context.Context, ownerID, sessionID string) (*models.SessionStat, error)
	// PurgeExpired drops sessions idle past their TTL and returns how many went.
	PurgeExpired(ctx context.Context) int
}

// activeSession is an in-progress study pass. mu serializes answers so the
// aggregator is only touched by one goroutine at a time.
type activeSession struct {
	mu        sync.Mutex
	info      models.StudySession
	cards     map[string]struct{}
	agg       *session.Aggregator
	expiresAt time.Time
	// stored is set once the built stat is persisted
	stored bool
}

type StudyOption func(*studyService)

// WithStudyClock overrides time.Now for session timestamps and expiry.
func WithStudyClock(now func() time.Time) StudyOption {
	return func(s *studyService) { s.now = now }
}

// WithShuffle overrides how a deck's cards are ordered at the start of a session.
func WithShuffle(shuffle func([]string)) StudyOption {
	return func(s *studyService) { s.shuffle = shuffle }
}

type studyService struct {
	deckRepo      repository.DeckRepository
	flashcardRepo repository.FlashcardRepository
	sessionRepo   repository.SessionRepository
	grader        assistant.Service
	ttl           time.Duration
	now           func() time.Time
	shuffle       func([]string)

	mu       sync.Mutex
	sessions map[string]*activeSession
}

// NewStudyService creates a new StudyService. grader may be nil, in which
// case free text answers are always graded locally.
func NewStudyService(
	deckRepo repository.DeckRepository,
	flashcardRepo repository.FlashcardRepository,
	sessionRepo repository.SessionRepository,
	grader assistant.Service,
	ttl time.Duration,
	opts ...StudyOption,
) StudyService {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	s := &studyService{
		deckRepo:      deckRepo,
		flashcardRepo: flashcardRepo,
		sessionRepo:   sessionRepo,
		grader:        grader,
		ttl:           ttl,
		now:           nowUTC,
		shuffle: func(ids []string) {
			rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
		},
		sessions: make(map[string]*activeSession),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *studyService) Start(ctx context.Context, ownerID, deckID string) (*models.StudySession, error) {
	log := logger.FromContext(ctx)
	log.Debug("starting study session: owner_id=%s, deck_id=%s", ownerID, deckID)

	if _, err := ownedDeck(ctx, s.deckRepo, ownerID, deckID); err != nil {
		return nil, err
	}
	cards, err := s.flashcardRepo.ListByDeck(ctx, deckID)
	if err != nil {
		log.Error("failed to list flashcards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if len(cards) == 0 {
		return nil, errors.NewValidationError("deck", "has no flashcards to study")
	}

	ids := make([]string, 0, len(cards))
	set := make(map[string]struct{}, len(cards))
	for _, c := range cards {
		ids = append(ids, c.ID)
		set[c.ID] = struct{}{}
	}
	s.shuffle(ids)

	agg := session.New(deckID, ownerID, session.WithClock(s.now))
	now := s.now()
	active := &activeSession{
		info: models.StudySession{
			ID:        agg.ID(),
			DeckID:    deckID,
			OwnerID:   ownerID,
			CardIDs:   ids,
			StartedAt: agg.StartedAt(),
			ExpiresAt: now.Add(s.ttl),
		},
		cards:     set,
		agg:       agg,
		expiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[active.info.ID] = active
	s.mu.Unlock()

	log.Info("study session started: session_id=%s, cards=%d", active.info.ID, len(ids))
	info := active.info
	info.CardIDs = slices.Clone(ids)
	return &info, nil
}

func (s *studyService) SetLocation(ctx context.Context, ownerID, sessionID string, latitude, longitude float64) error {
	log := logger.FromContext(ctx)
	log.Debug("setting study location: session_id=%s", sessionID)

	active, err := s.lookup(ownerID, sessionID)
	if err != nil {
		return err
	}
	active.mu.Lock()
	defer active.mu.Unlock()

	if err := active.agg.SetLocation(latitude, longitude); err != nil {
		return aggregatorError(err)
	}
	s.touch(active)
	return nil
}

func (s *studyService) Answer(ctx context.Context, ownerID, sessionID string, answer models.Answer) (*models.AnswerOutcome, error) {
	log := logger.FromContext(ctx).WithField("session_id", sessionID)
	log.Debug("answering card: card_id=%s", answer.CardID)

	active, err := s.lookup(ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	if _, ok := active.cards[answer.CardID]; !ok {
		return nil, errors.NewValidationError("card_id", "is not part of this session")
	}

	active.mu.Lock()
	defer active.mu.Unlock()
	if active.agg.Built() {
		return nil, aggregatorError(session.ErrFinalized)
	}

	card, err := loadCard(ctx, s.flashcardRepo, active.info.DeckID, answer.CardID)
	if err != nil {
		return nil, err
	}

	outcome, err := s.grade(ctx, active, card, answer)
	if err != nil {
		return nil, err
	}
	active.info.Answered = len(active.agg.Results())
	s.touch(active)

	// The counters are informational; a failed write does not void the answer.
	reviewed := flashcard.ApplyReview(*card, s.now())
	if err := s.flashcardRepo.UpdateReviewCounters(ctx, reviewed); err != nil {
		log.Warn("failed to update review counters: %v", err)
	}
	return outcome, nil
}

func (s *studyService) grade(ctx context.Context, active *activeSession, card *models.Flashcard, answer models.Answer) (*models.AnswerOutcome, error) {
	agg := active.agg
	outcome := &models.AnswerOutcome{CardID: card.ID, CardType: card.Type(), Source: models.GradeSourceLocal}

	var err error
	switch c := card.Content.(type) {
	case models.FrontBack:
		outcome.Source = models.GradeSourceNone
		err = agg.RecordFrontBack(card.ID)
	case models.MultipleChoice:
		if answer.Option == nil {
			return nil, errors.NewValidationError("option", "is required for multiple choice cards")
		}
		correct := flashcard.GradeMultipleChoice(c, *answer.Option)
		outcome.Correct = &correct
		err = agg.RecordMultipleChoice(card.ID, correct)
	case models.Cloze:
		g := flashcard.GradeCloze(c, answer.Blanks)
		outcome.Correct = &g.Correct
		outcome.ClozeFeedback = g.Feedback
		err = agg.RecordCloze(card.ID, session.ClozeOutcome{
			BlanksCorrect: &g.BlanksCorrect,
			BlanksTotal:   &g.BlanksTotal,
		})
	case models.FreeText:
		correct, score, source := s.gradeFreeText(ctx, active.info.DeckID, card.ID, c, answer.Text)
		outcome.Correct = &correct
		outcome.Source = source
		err = agg.RecordFreeText(card.ID, score)
	default:
		return nil, errors.NewInternalError(stderrors.New("flashcard has no content"))
	}
	if err != nil {
		return nil, aggregatorError(err)
	}

	for _, r := range agg.Results() {
		if r.CardID == card.ID {
			outcome.Score = r.Score
			outcome.MaxScore = r.MaxScore
		}
	}
	return outcome, nil
}

// gradeFreeText asks the remote grader and falls back to exact matching
// against the card's valid answers when it cannot be reached.
func (s *studyService) gradeFreeText(ctx context.Context, deckID, cardID string, card models.FreeText, text string) (bool, float64, models.GradeSource) {
	log := logger.FromContext(ctx)
	if s.grader != nil {
		resp, err := s.grader.ValidateAnswer(ctx, assistant.ValidateRequest{
			DeckID:      deckID,
			FlashcardID: cardID,
			UserAnswer:  text,
		})
		if err == nil {
			return resp.IsCorrect, session.ClampScore(resp.Score), models.GradeSourceRemote
		}
		log.Warn("remote grading failed, using local match: %v", err)
	}
	correct, score := flashcard.LocalFreeTextScore(card, text)
	return correct, score, models.GradeSourceLocal
}

func (s *studyService) Card(ctx context.Context, ownerID, sessionID, cardID string) (*models.Flashcard, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting study card: session_id=%s, card_id=%s", sessionID, cardID)

	active, err := s.lookup(ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	if _, ok := active.cards[cardID]; !ok {
		return nil, errors.NewNotFoundError("flashcard", cardID)
	}
	card, err := loadCard(ctx, s.flashcardRepo, active.info.DeckID, cardID)
	if err != nil {
		return nil, err
	}
	card.Content = flashcard.Prompt(card.Content)
	return card, nil
}

func (s *studyService) Finish(ctx context.Context, ownerID, sessionID string) (*models.SessionStat, error) {
	log := logger.FromContext(ctx).WithField("session_id", sessionID)
	log.Debug("finishing study session")

	active, err := s.lookup(ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	active.mu.Lock()
	defer active.mu.Unlock()
	if active.stored {
		return nil, errors.NewConflictError("study session is already finished")
	}

	// Build is cached, so a retry after a failed insert stores the same stat.
	stat := active.agg.Build()
	if err := s.sessionRepo.Insert(ctx, stat); err != nil {
		log.Error("failed to store session: %v", err)
		return nil, errors.NewInternalError(err)
	}
	active.stored = true

	s.remove(sessionID)
	log.Info("study session stored: score=%.2f/%.2f, questions=%d",
		stat.TotalScore, stat.TotalPossible, stat.TotalQuestions)
	return &stat, nil
}

func (s *studyService) Abandon(ctx context.Context, ownerID, sessionID string) error {
	log := logger.FromContext(ctx)
	log.Debug("abandoning study session: session_id=%s", sessionID)

	if _, err := s.lookup(ownerID, sessionID); err != nil {
		return err
	}
	s.remove(sessionID)
	return nil
}

func (s *studyService) History(ctx context.Context, ownerID, deckID string, q HistoryQuery) ([]models.SessionStat, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing session history: owner_id=%s, deck_id=%s", ownerID, deckID)

	if q.From < 0 || q.To < 0 {
		return nil, errors.NewValidationError("from/to", "cannot be negative")
	}
	if q.To > 0 && q.From >= q.To {
		return nil, errors.NewValidationError("from/to", "from must be before to")
	}

	stats, err := s.sessionRepo.List(ctx, models.SessionFilter{
		OwnerID: ownerID,
		DeckID:  deckID,
		From:    q.From,
		To:      q.To,
		Limit:   q.Limit,
		Offset:  q.Offset,
	})
	if err != nil {
		log.Error("failed to list sessions: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return stats, nil
}

func (s *studyService) Stored(ctx context.Context, ownerID, sessionID string) (*models.SessionStat, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting stored session: session_id=%s", sessionID)

	stat, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NewNotFoundError("session", sessionID)
		}
		log.Error("failed to get session: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if stat.OwnerID != ownerID {
		return nil, errors.NewNotFoundError("session", sessionID)
	}
	return stat, nil
}

func (s *studyService) PurgeExpired(ctx context.Context) int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, active := range s.sessions {
		if now.After(active.expiresAt) {
			delete(s.sessions, id)
			n++
		}
	}
	if n > 0 {
		logger.FromContext(ctx).Info("purged %d expired study sessions", n)
	}
	return n
}

// lookup returns the caller's active session. Sessions of other users and
// expired ones look the same as missing ones.
func (s *studyService) lookup(ownerID, sessionID string) (*activeSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active, ok := s.sessions[sessionID]
	if !ok || active.info.OwnerID != ownerID {
		return nil, errors.NewNotFoundError("study session", sessionID)
	}
	if s.now().After(active.expiresAt) {
		delete(s.sessions, sessionID)
		return nil, errors.NewNotFoundError("study session", sessionID)
	}
	return active, nil
}

func (s *studyService) touch(active *activeSession) {
	s.mu.Lock()
	active.expiresAt = s.now().Add(s.ttl)
	active.info.ExpiresAt = active.expiresAt
	s.mu.Unlock()
}

func (s *studyService) remove(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

func aggregatorError(err error) error {
	switch {
	case stderrors.Is(err, session.ErrFinalized):
		return errors.NewConflictError("study session is already finished")
	case stderrors.Is(err, session.ErrLocationSet):
		return errors.NewConflictError("study session location is already set")
	case stderrors.Is(err, session.ErrInvalidLocation):
		return errors.NewValidationError("location", err.Error())
	case stderrors.Is(err, session.ErrEmptyCardID):
		return errors.NewValidationError("card_id", "cannot be empty")
	default:
		return errors.NewInternalError(err)
	}
}
