package shortener

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sandyurl/shortener/internal/cache"
	"github.com/sandyurl/shortener/internal/identity"
	"go.uber.org/zap"
)

// MaxAttempts bounds how many codes Create tries before giving up.
const MaxAttempts = 5

// Service creates, resolves and deletes short URLs. Reads go through the cache;
// writes go to the repository only.
type Service struct {
	repo         Repository
	cache        cache.Cache
	users        UserDirectory
	generateCode CodeGenerator
	logger       *zap.Logger
	recorder     Recorder
	maxAttempts  int
	ttl          time.Duration
	now          func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithRecorder reports cache and generation events to r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithMaxAttempts overrides MaxAttempts.
func WithMaxAttempts(n int) Option {
	return func(s *Service) { s.maxAttempts = n }
}

// WithClock overrides the source of creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new resolution service.
func NewService(
	repo Repository,
	c cache.Cache,
	users UserDirectory,
	generator CodeGenerator,
	logger *zap.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		repo:         repo,
		cache:        c,
		users:        users,
		generateCode: generator,
		logger:       logger,
		recorder:     nopRecorder{},
		maxAttempts:  MaxAttempts,
		ttl:          cache.TTL,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create shortens rawURL on behalf of creator. It never writes to the cache.
func (s *Service) Create(ctx context.Context, rawURL string, creator identity.Identity) (*URLRecord, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	code, err := s.freeCode(ctx)
	if err != nil {
		return nil, err
	}

	record := &URLRecord{
		OriginalURL: rawURL,
		ShortCode:   code,
		CreatedAt:   s.now().UTC(),
	}
	if !creator.IsAnonymous() {
		record.CreatedBy = creator.UserID
	}

	created, err := s.repo.Insert(ctx, record)
	if err != nil {
		// The lookup in freeCode is advisory; a concurrent insert can still win the code.
		if errors.Is(err, ErrDuplicateCode) {
			s.recorder.Exhausted()
			s.logger.Warn("short code taken between lookup and insert", zap.String("code", string(code)))

			return nil, fmt.Errorf("%w: %w", ErrCodeGenerationExhausted, err)
		}

		return nil, fmt.Errorf("insert url: %w", err)
	}

	return created, nil
}

// freeCode generates codes until one is not found in the repository.
func (s *Service) freeCode(ctx context.Context) (Code, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		code := Code(s.generateCode())

		_, err := s.repo.FindByCode(ctx, code)
		if errors.Is(err, ErrNotFound) {
			return code, nil
		}

		if err != nil {
			return "", fmt.Errorf("look up code: %w", err)
		}

		s.recorder.Collision()
		s.logger.Debug("short code collision", zap.String("code", string(code)), zap.Int("attempt", attempt))
	}

	s.recorder.Exhausted()

	return "", fmt.Errorf("%w after %d attempts", ErrCodeGenerationExhausted, s.maxAttempts)
}

// Resolve returns the record for code, from the cache when possible. A cache hit
// never touches the repository. Cache failures degrade to a repository read.
func (s *Service) Resolve(ctx context.Context, code Code) (*URLRecord, error) {
	key := cache.CodeKey(string(code))

	cached, err := cache.GetJSON[URLRecord](ctx, s.cache, key)
	switch {
	case err == nil:
		s.recorder.CacheHit()

		return cached, nil
	case errors.Is(err, cache.ErrMiss):
		s.recorder.CacheMiss()
	default:
		s.recorder.CacheError("get")
		s.logger.Warn("cache read failed, falling back to store", zap.String("key", key), zap.Error(err))
	}

	record, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}

		return nil, fmt.Errorf("find url %s: %w", code, err)
	}

	if err := cache.SetJSON(ctx, s.cache, key, record, s.ttl); err != nil {
		s.recorder.CacheError("set")
		s.logger.Warn("cache populate failed", zap.String("key", key), zap.Error(err))
	}

	return record, nil
}

// Delete removes a record on behalf of actor, who must be an administrator or the
// record's creator. The cached copy is evicted before the record is removed, so a
// cache failure leaves the record in place instead of leaving a stale cache entry.
func (s *Service) Delete(ctx context.Context, id RecordID, actor identity.Identity) (*DeleteResult, error) {
	if actor.IsAnonymous() {
		return nil, ErrUnauthenticated
	}

	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}

		return nil, fmt.Errorf("find url %s: %w", id, err)
	}

	if !actor.IsAdmin() && !actor.Owns(record.CreatedBy) {
		return nil, ErrForbidden
	}

	evicted, err := s.cache.Delete(ctx, cache.CodeKey(string(record.ShortCode)))
	if err != nil {
		s.recorder.CacheError("delete")

		return nil, fmt.Errorf("evict %s: %w", record.ShortCode, err)
	}

	removed, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}

		return nil, fmt.Errorf("delete url %s: %w", id, err)
	}

	return &DeleteResult{Record: removed, Evicted: evicted}, nil
}

// DeleteUser removes a user and every record they created, purging the cached
// copies of those records and of the user. Only administrators may do this, and
// never to their own account.
func (s *Service) DeleteUser(ctx context.Context, userID identity.UserID, actor identity.Identity) (*PurgeResult, error) {
	switch {
	case actor.IsAnonymous():
		return nil, ErrUnauthenticated
	case !actor.IsAdmin():
		return nil, ErrForbidden
	case actor.UserID == userID:
		return nil, ErrSelfDeletion
	}

	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", userID, err)
	}

	if !exists {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	listed, err := s.repo.ListByCreator(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list urls of %s: %w", userID, err)
	}

	keys := make([]string, 0, len(listed)+1)
	purged := make(map[Code]struct{}, len(listed))

	for _, r := range listed {
		keys = append(keys, cache.CodeKey(string(r.ShortCode)))
		purged[r.ShortCode] = struct{}{}
	}

	keys = append(keys, cache.UserKey(string(userID)))

	evicted, err := s.cache.Delete(ctx, keys...)
	if err != nil {
		s.recorder.CacheError("delete")

		return nil, fmt.Errorf("evict user %s: %w", userID, err)
	}

	removed, err := s.repo.DeleteByCreator(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("delete urls of %s: %w", userID, err)
	}

	// Records created after the listing were never purged above.
	var late []string

	for _, r := range removed {
		if _, ok := purged[r.ShortCode]; !ok {
			late = append(late, cache.CodeKey(string(r.ShortCode)))
		}
	}

	if len(late) > 0 {
		n, err := s.cache.Delete(ctx, late...)
		if err != nil {
			s.recorder.CacheError("delete")
			s.logger.Error("failed to evict late records", zap.String("user", string(userID)), zap.Error(err))
		}

		evicted += n
	}

	if err := s.users.Remove(ctx, userID); err != nil {
		return nil, fmt.Errorf("delete user %s: %w", userID, err)
	}

	s.logger.Info("user deleted",
		zap.String("user", string(userID)),
		zap.String("by", string(actor.UserID)),
		zap.Int("urls", len(removed)),
		zap.Int64("evicted", evicted),
	)

	return &PurgeResult{UserID: userID, Records: removed, Evicted: evicted}, nil
}

// Dashboard lists every record for administrators, the caller's own records for
// other users, and nothing for anonymous callers.
func (s *Service) Dashboard(ctx context.Context, viewer identity.Identity) ([]*URLRecord, error) {
	if viewer.IsAnonymous() {
		return []*URLRecord{}, nil
	}

	if viewer.IsAdmin() {
		return s.repo.ListAll(ctx)
	}

	return s.repo.ListByCreator(ctx, viewer.UserID)
}

// ListByCreator lists the records of userID. Administrators only.
func (s *Service) ListByCreator(ctx context.Context, userID identity.UserID, actor identity.Identity) ([]*URLRecord, error) {
	if actor.IsAnonymous() {
		return nil, ErrUnauthenticated
	}

	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	return s.repo.ListByCreator(ctx, userID)
}
