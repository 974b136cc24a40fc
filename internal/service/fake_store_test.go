package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/BloggingApp/comment-service/internal/config"
	"github.com/BloggingApp/comment-service/internal/metrics"
	"github.com/BloggingApp/comment-service/internal/model"
	"github.com/BloggingApp/comment-service/internal/repository"
	"github.com/BloggingApp/comment-service/internal/repository/postgres"
	"github.com/BloggingApp/comment-service/internal/repository/redisrepo"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var baseTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type likeKey struct {
	commentID int64
	userID    uuid.UUID
}

type memTxKey struct{}

// memStore is an in-memory stand-in for the postgres repositories.
// Transactions are serialized and roll back by restoring a snapshot.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	nextCommentID int64
	nextReportID  int64
	comments      map[int64]model.Comment
	likes         map[likeKey]struct{}
	reports       map[int64]model.CommentReport
	articles      map[int64]model.CachedArticle
	users         map[uuid.UUID]model.CachedUser

	failModerationOf int64
	failDeleteOf     int64
}

func newMemStore() *memStore {
	return &memStore{
		comments: map[int64]model.Comment{},
		likes:    map[likeKey]struct{}{},
		reports:  map[int64]model.CommentReport{},
		articles: map[int64]model.CachedArticle{},
		users:    map[uuid.UUID]model.CachedUser{},
	}
}

type memSnapshot struct {
	nextCommentID int64
	nextReportID  int64
	comments      map[int64]model.Comment
	likes         map[likeKey]struct{}
	reports       map[int64]model.CommentReport
	articles      map[int64]model.CachedArticle
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := memSnapshot{
		nextCommentID: s.nextCommentID,
		nextReportID:  s.nextReportID,
		comments:      make(map[int64]model.Comment, len(s.comments)),
		likes:         make(map[likeKey]struct{}, len(s.likes)),
		reports:       make(map[int64]model.CommentReport, len(s.reports)),
		articles:      make(map[int64]model.CachedArticle, len(s.articles)),
	}
	for k, v := range s.comments {
		snap.comments[k] = v
	}
	for k, v := range s.likes {
		snap.likes[k] = v
	}
	for k, v := range s.reports {
		snap.reports[k] = v
	}
	for k, v := range s.articles {
		snap.articles[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextCommentID = snap.nextCommentID
	s.nextReportID = snap.nextReportID
	s.comments = snap.comments
	s.likes = snap.likes
	s.reports = snap.reports
	s.articles = snap.articles
}

func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// deleteCommentLocked removes a comment and everything that references it.
func (s *memStore) deleteCommentLocked(id int64) {
	delete(s.comments, id)
	for key := range s.likes {
		if key.commentID == id {
			delete(s.likes, key)
		}
	}
	for rid, report := range s.reports {
		if report.CommentID == id {
			delete(s.reports, rid)
		}
	}
	for cid, c := range s.comments {
		if c.ParentID != nil && *c.ParentID == id {
			s.deleteCommentLocked(cid)
		}
	}
}

func (s *memStore) fullLocked(c model.Comment, viewerID uuid.UUID) *model.FullComment {
	full := &model.FullComment{Comment: c}
	if user, ok := s.users[c.AuthorID]; ok {
		full.Author = model.UserAuthor{Username: user.Username}
		if user.DisplayName != "" {
			full.Author.DisplayName = stringPtr(user.DisplayName)
		}
		if user.AvatarURL != "" {
			full.Author.AvatarURL = stringPtr(user.AvatarURL)
		}
	}
	for key := range s.likes {
		if key.commentID == c.ID {
			full.LikesCount++
			if key.userID == viewerID {
				full.UserLiked = true
			}
		}
	}
	for _, report := range s.reports {
		if report.CommentID == c.ID {
			full.ReportsCount++
		}
	}
	return full
}

func visible(c model.Comment, onlyApproved bool) bool {
	return !onlyApproved || c.Status == model.StatusApproved
}

func sortNewestFirst(comments []model.Comment) {
	sort.Slice(comments, func(i, j int) bool {
		if !comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].CreatedAt.After(comments[j].CreatedAt)
		}
		return comments[i].ID > comments[j].ID
	})
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

type memComments struct{ *memStore }

func (r memComments) Create(ctx context.Context, comment model.Comment) (*model.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.articles[comment.ArticleID]; !ok {
		return nil, postgres.ErrForeignKeyViolation
	}
	if comment.ParentID != nil {
		if _, ok := r.comments[*comment.ParentID]; !ok {
			return nil, postgres.ErrParentNotFound
		}
	}

	r.nextCommentID++
	comment.ID = r.nextCommentID
	comment.CreatedAt = baseTime.Add(time.Duration(comment.ID) * time.Second)
	comment.UpdatedAt = comment.CreatedAt
	r.comments[comment.ID] = comment

	return &comment, nil
}

func (r memComments) FindByID(ctx context.Context, id int64) (*model.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.comments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &c, nil
}

func (r memComments) FindFullByID(ctx context.Context, id int64, viewerID uuid.UUID) (*model.FullComment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.comments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r.fullLocked(c, viewerID), nil
}

func (r memComments) UpdateContent(ctx context.Context, id int64, content string) (*model.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.comments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	c.Content = content
	c.UpdatedAt = c.UpdatedAt.Add(time.Minute)
	r.comments[id] = c
	return &c, nil
}

func (r memComments) UpdateModeration(ctx context.Context, id int64, upd postgres.ModerationUpdate) (*model.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failModerationOf == id {
		return nil, errors.New("connection reset")
	}

	c, ok := r.comments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if upd.Status != nil {
		c.Status = *upd.Status
	}
	if upd.Reported != nil {
		c.Reported = *upd.Reported
	}
	if upd.Reason != nil {
		reason := *upd.Reason
		c.ModerationReason = &reason
	}
	c.UpdatedAt = c.UpdatedAt.Add(time.Minute)
	r.comments[id] = c
	return &c, nil
}

func (r memComments) SetReported(ctx context.Context, id int64, reported bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.comments[id]
	if !ok {
		return pgx.ErrNoRows
	}
	c.Reported = reported
	r.comments[id] = c
	return nil
}

func (r memComments) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failDeleteOf == id {
		return errors.New("connection reset")
	}
	if _, ok := r.comments[id]; !ok {
		return pgx.ErrNoRows
	}
	r.deleteCommentLocked(id)
	return nil
}

func (r memComments) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var existing []int64
	for _, id := range ids {
		if _, ok := r.comments[id]; ok {
			existing = append(existing, id)
		}
	}
	sort.Slice(existing, func(i, j int) bool { return existing[i] < existing[j] })
	return existing, nil
}

func (r memComments) roots(articleID int64, onlyApproved bool) []model.Comment {
	var roots []model.Comment
	for _, c := range r.comments {
		if c.ArticleID == articleID && c.ParentID == nil && visible(c, onlyApproved) {
			roots = append(roots, c)
		}
	}
	sortNewestFirst(roots)
	return roots
}

func (r memComments) FindRoots(ctx context.Context, q postgres.RootsQuery) ([]*model.FullComment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*model.FullComment
	for _, c := range paginate(r.roots(q.ArticleID, q.OnlyApproved), q.Limit, q.Offset) {
		result = append(result, r.fullLocked(c, q.ViewerID))
	}
	return result, nil
}

func (r memComments) CountRoots(ctx context.Context, articleID int64, onlyApproved bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return int64(len(r.roots(articleID, onlyApproved))), nil
}

func (r memComments) CountAll(ctx context.Context, articleID int64, onlyApproved bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, c := range r.comments {
		if c.ArticleID == articleID && visible(c, onlyApproved) {
			count++
		}
	}
	return count, nil
}

func (r memComments) FindReplies(ctx context.Context, rootIDs []int64, viewerID uuid.UUID, onlyApproved bool) ([]*model.FullComment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wanted := make(map[int64]struct{}, len(rootIDs))
	for _, id := range rootIDs {
		wanted[id] = struct{}{}
	}

	var replies []model.Comment
	for _, c := range r.comments {
		if c.ParentID == nil || !visible(c, onlyApproved) {
			continue
		}
		if _, ok := wanted[*c.ParentID]; ok {
			replies = append(replies, c)
		}
	}
	sort.Slice(replies, func(i, j int) bool { return replies[i].ID < replies[j].ID })

	var result []*model.FullComment
	for _, c := range replies {
		result = append(result, r.fullLocked(c, viewerID))
	}
	return result, nil
}

func (r memComments) moderationSet(q postgres.ModerationQuery) []model.Comment {
	var comments []model.Comment
	for _, c := range r.comments {
		if q.Status != "" && c.Status != q.Status {
			continue
		}
		if q.ReportedOnly && !c.Reported {
			continue
		}
		comments = append(comments, c)
	}
	sortNewestFirst(comments)
	return comments
}

func (r memComments) FindForModeration(ctx context.Context, q postgres.ModerationQuery) ([]*model.ModerationComment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*model.ModerationComment
	for _, c := range paginate(r.moderationSet(q), q.Limit, q.Offset) {
		article := r.articles[c.ArticleID]
		result = append(result, &model.ModerationComment{
			FullComment:  *r.fullLocked(c, q.ViewerID),
			ArticleTitle: article.Title,
			ArticleSlug:  article.Slug,
		})
	}
	return result, nil
}

func (r memComments) CountForModeration(ctx context.Context, q postgres.ModerationQuery) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return int64(len(r.moderationSet(q))), nil
}

func (r memComments) FindUserSummaries(ctx context.Context, userID uuid.UUID) ([]*model.UserCommentSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var comments []model.Comment
	for _, c := range r.comments {
		if c.AuthorID == userID {
			comments = append(comments, c)
		}
	}
	sortNewestFirst(comments)

	var result []*model.UserCommentSummary
	for _, c := range comments {
		summary := &model.UserCommentSummary{
			ID:           c.ID,
			ArticleID:    c.ArticleID,
			ArticleTitle: r.articles[c.ArticleID].Title,
			Content:      c.Content,
			Status:       c.Status,
			CreatedAt:    c.CreatedAt,
		}
		reasons := map[string]struct{}{}
		for _, report := range r.reports {
			if report.CommentID == c.ID {
				summary.ReportsCount++
				reasons[string(report.Reason)] = struct{}{}
			}
		}
		for reason := range reasons {
			summary.ReportReasons = append(summary.ReportReasons, reason)
		}
		sort.Strings(summary.ReportReasons)
		result = append(result, summary)
	}
	return result, nil
}

type memLikes struct{ *memStore }

func (r memLikes) Create(ctx context.Context, commentID int64, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := likeKey{commentID, userID}
	if _, ok := r.likes[key]; ok {
		return false, nil
	}
	r.likes[key] = struct{}{}
	return true, nil
}

func (r memLikes) Delete(ctx context.Context, commentID int64, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := likeKey{commentID, userID}
	if _, ok := r.likes[key]; !ok {
		return false, nil
	}
	delete(r.likes, key)
	return true, nil
}

func (r memLikes) Exists(ctx context.Context, commentID int64, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.likes[likeKey{commentID, userID}]
	return ok, nil
}

func (r memLikes) Count(ctx context.Context, commentID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for key := range r.likes {
		if key.commentID == commentID {
			count++
		}
	}
	return count, nil
}

type memReports struct{ *memStore }

func (r memReports) Create(ctx context.Context, report model.CommentReport) (*model.CommentReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.reports {
		if existing.CommentID == report.CommentID && existing.ReporterID == report.ReporterID {
			return nil, postgres.ErrUniqueViolation
		}
	}
	r.nextReportID++
	report.ID = r.nextReportID
	report.CreatedAt = baseTime.Add(time.Duration(report.ID) * time.Minute)
	r.reports[report.ID] = report
	return &report, nil
}

func (r memReports) Exists(ctx context.Context, commentID int64, reporterID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, report := range r.reports {
		if report.CommentID == commentID && report.ReporterID == reporterID {
			return true, nil
		}
	}
	return false, nil
}

func (r memReports) FindByComment(ctx context.Context, commentID int64) ([]*model.CommentReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*model.CommentReport
	for _, report := range r.reports {
		if report.CommentID == commentID {
			report := report
			result = append(result, &report)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (r memReports) DeleteByComment(ctx context.Context, commentID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, report := range r.reports {
		if report.CommentID == commentID {
			delete(r.reports, id)
			deleted++
		}
	}
	return deleted, nil
}

type memArticles struct{ *memStore }

func (r memArticles) Upsert(ctx context.Context, article model.CachedArticle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.articles[article.ID] = article
	return nil
}

func (r memArticles) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.articles, id)
	for cid, c := range r.comments {
		if c.ArticleID == id {
			r.deleteCommentLocked(cid)
		}
	}
	return nil
}

func (r memArticles) Exists(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.articles[id]
	return ok, nil
}

type memUsers struct{ *memStore }

func (r memUsers) Create(ctx context.Context, cachedUser model.CachedUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[cachedUser.ID] = cachedUser
	return nil
}

func (r memUsers) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil
	}
	for key, value := range updates {
		s, _ := value.(string)
		switch key {
		case "username":
			user.Username = s
		case "display_name":
			user.DisplayName = s
		case "avatar_url":
			user.AvatarURL = s
		default:
			return postgres.ErrFieldsNotAllowedToUpdate
		}
	}
	r.users[id] = user
	return nil
}

func (r memUsers) FindByID(ctx context.Context, id uuid.UUID) (*model.CachedUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (s *memStore) commentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.comments)
}

func (s *memStore) likeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.likes)
}

func (s *memStore) reportCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

func (s *memStore) comment(id int64) (model.Comment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	return c, ok
}

// memRedis implements redisrepo.Default over a map.
type memRedis struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemRedis() *memRedis {
	return &memRedis{data: map[string]string{}}
}

func (r *memRedis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch v := value.(type) {
	case bool:
		if v {
			r.data[key] = "1"
		} else {
			r.data[key] = "0"
		}
	case []byte:
		r.data[key] = string(v)
	default:
		r.data[key] = fmt.Sprint(v)
	}
	return nil
}

func (r *memRedis) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	valueJSON, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.Set(ctx, key, valueJSON, ttl)
}

func (r *memRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	r.mu.Lock()
	defer r.mu.Unlock()

	value, ok := r.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func (r *memRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for _, key := range keys {
		if _, ok := r.data[key]; ok {
			delete(r.data, key)
			deleted++
		}
	}
	return redis.NewIntResult(deleted, nil)
}

func (r *memRedis) has(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.data[key]
	return ok
}

type testEnv struct {
	service *Service
	store   *memStore
	redis   *memRedis
	repo    *repository.Repository
	metrics *metrics.Metrics
}

func testConfig() config.CommentsConfig {
	return config.CommentsConfig{
		AutoApprove: true,
		MaxLength:   config.DefaultMaxLength,
		BulkMaxIDs:  config.DefaultBulkMaxIDs,
		Blacklist:   []string{"spam", "offensive_word_1", "offensive_word_2"},
	}
}

func newTestEnv(t *testing.T, cfg config.CommentsConfig) *testEnv {
	t.Helper()

	store := newMemStore()
	rdb := newMemRedis()
	repo := &repository.Repository{
		Postgres: &postgres.PostgresRepository{
			Transactor: store,
			Comment:    memComments{store},
			Like:       memLikes{store},
			Report:     memReports{store},
			Article:    memArticles{store},
			UserCache:  memUsers{store},
		},
		Redis: &redisrepo.RedisRepository{Default: rdb},
	}
	m := metrics.New(nil)

	return &testEnv{
		service: New(zap.NewNop(), repo, nil, cfg, m),
		store:   store,
		redis:   rdb,
		repo:    repo,
		metrics: m,
	}
}

func (e *testEnv) addArticle(t *testing.T, id int64) {
	t.Helper()
	e.store.articles[id] = model.CachedArticle{
		ID:       id,
		AuthorID: uuid.New(),
		Title:    fmt.Sprintf("Article %d", id),
		Slug:     fmt.Sprintf("article-%d", id),
	}
}

func user() model.Actor {
	return model.Actor{ID: uuid.New()}
}

func admin() model.Actor {
	return model.Actor{ID: uuid.New(), IsAdmin: true}
}

func int64Ptr(v int64) *int64 {
	return &v
}

func stringPtr(v string) *string {
	return &v
}
