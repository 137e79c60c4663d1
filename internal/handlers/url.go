package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sandyurl/shortener/internal/analytics"
	"github.com/sandyurl/shortener/internal/identity"
	"github.com/sandyurl/shortener/internal/shortener"
	"github.com/sandyurl/shortener/internal/users"
	"go.uber.org/zap"
)

// URLService is the resolution service behind the URL routes.
type URLService interface {
	Create(ctx context.Context, rawURL string, creator identity.Identity) (*shortener.URLRecord, error)
	Resolve(ctx context.Context, code shortener.Code) (*shortener.URLRecord, error)
	Delete(ctx context.Context, id shortener.RecordID, actor identity.Identity) (*shortener.DeleteResult, error)
	DeleteUser(ctx context.Context, userID identity.UserID, actor identity.Identity) (*shortener.PurgeResult, error)
	Dashboard(ctx context.Context, viewer identity.Identity) ([]*shortener.URLRecord, error)
	ListByCreator(ctx context.Context, userID identity.UserID, actor identity.Identity) ([]*shortener.URLRecord, error)
}

// CreatorLookup finds the user behind a record's CreatedBy.
type CreatorLookup interface {
	Get(ctx context.Context, id identity.UserID) (*users.User, error)
}

// URLHandler handles URL shortening operations.
type URLHandler struct {
	service    URLService
	creators   CreatorLookup
	caller     caller
	publishers *analytics.Publishers
	baseURL    string
	logger     *zap.Logger
}

// NewURLHandler creates a new URL handler.
func NewURLHandler(
	service URLService,
	creators CreatorLookup,
	auth Authenticator,
	publishers *analytics.Publishers,
	baseURL string,
	logger *zap.Logger,
) *URLHandler {
	return &URLHandler{
		service:    service,
		creators:   creators,
		caller:     caller{auth: auth, logger: logger},
		publishers: publishers,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

func (h *URLHandler) CreateShortURL(ctx context.Context, req *CreateShortURLRequest) (*CreateShortURLResponse, error) {
	creator := h.caller.optional(ctx, req.Token)

	record, err := h.service.Create(ctx, req.Body.OriginalURL, creator)
	if err != nil {
		return nil, toHTTPError(h.logger, "shorten", err)
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.URLCreatedEvent{
		ID:          string(record.ID),
		Code:        string(record.ShortCode),
		OriginalURL: record.OriginalURL,
		CreatedBy:   string(record.CreatedBy),
		CreatedAt:   record.CreatedAt,
		ClientIP:    meta.ClientIP,
		UserAgent:   meta.UserAgent,
	}

	if err := h.publishers.URLCreated(ctx, event); err != nil {
		h.logger.Error("failed to publish analytics event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}

	shortURL := h.baseURL + "/" + string(record.ShortCode)

	resp := &CreateShortURLResponse{}
	resp.Location = shortURL
	resp.Body.Message = "Short URL created"
	resp.Body.ShortURL = shortURL
	resp.Body.URL = record

	return resp, nil
}

func (h *URLHandler) VerifyCode(ctx context.Context, req *CodeRequest) (*VerifyResponse, error) {
	record, err := h.service.Resolve(ctx, shortener.Code(req.ShortCode))
	if err != nil {
		return nil, toHTTPError(h.logger, "verify", err)
	}

	resp := &VerifyResponse{}
	resp.Body.Message = "Short URL found"
	resp.Body.URL = record

	return resp, nil
}

func (h *URLHandler) RedirectToURL(ctx context.Context, req *CodeRequest) (*RedirectResponse, error) {
	record, err := h.service.Resolve(ctx, shortener.Code(req.ShortCode))
	if err != nil {
		return nil, toHTTPError(h.logger, "redirect", err)
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.URLAccessedEvent{
		Code:       req.ShortCode,
		AccessedAt: time.Now(),
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
		Referrer:   meta.Referrer,
	}

	if err = h.publishers.URLAccessed(ctx, event); err != nil {
		h.logger.Error("failed to publish access event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}

	resp := &RedirectResponse{Status: http.StatusFound}
	resp.Location = record.OriginalURL

	return resp, nil
}

func (h *URLHandler) DeleteURL(ctx context.Context, req *DeleteURLRequest) (*DeleteURLResponse, error) {
	actor, err := h.caller.required(ctx, "delete_url", req.Token)
	if err != nil {
		return nil, err
	}

	result, err := h.service.Delete(ctx, shortener.RecordID(req.ID), actor)
	if err != nil {
		return nil, toHTTPError(h.logger, "delete_url", err)
	}

	reason := analytics.DeletedByOwner
	if !actor.Owns(result.Record.CreatedBy) {
		reason = analytics.DeletedByAdmin
	}

	h.publishDeleted(ctx, result.Record, actor, reason)

	resp := &DeleteURLResponse{}
	resp.Body.Message = "URL deleted"
	resp.Body.Evicted = result.Evicted

	return resp, nil
}

func (h *URLHandler) Dashboard(ctx context.Context, req *DashboardRequest) (*DashboardResponse, error) {
	viewer := h.caller.optional(ctx, req.Token)

	records, err := h.service.Dashboard(ctx, viewer)
	if err != nil {
		return nil, toHTTPError(h.logger, "dashboard", err)
	}

	var creators map[identity.UserID]*Creator
	if viewer.IsAdmin() {
		creators = h.lookupCreators(ctx, records)
	}

	resp := &DashboardResponse{}
	resp.Body.URLs = make([]DashboardURL, 0, len(records))

	for _, r := range records {
		resp.Body.URLs = append(resp.Body.URLs, DashboardURL{
			ID:          r.ID,
			OriginalURL: r.OriginalURL,
			ShortCode:   r.ShortCode,
			CreatedBy:   r.CreatedBy,
			CreatedAt:   r.CreatedAt,
			Creator:     creators[r.CreatedBy],
		})
	}

	return resp, nil
}

// lookupCreators loads each distinct creator once. Creators that cannot be
// loaded are left out; the listing itself never fails on them.
func (h *URLHandler) lookupCreators(ctx context.Context, records []*shortener.URLRecord) map[identity.UserID]*Creator {
	creators := make(map[identity.UserID]*Creator)

	for _, r := range records {
		if r.CreatedBy == "" {
			continue
		}

		if _, seen := creators[r.CreatedBy]; seen {
			continue
		}

		user, err := h.creators.Get(ctx, r.CreatedBy)
		if err != nil {
			if !errors.Is(err, users.ErrNotFound) {
				h.logger.Warn("creator lookup failed", zap.String("user", string(r.CreatedBy)), zap.Error(err))
			}

			creators[r.CreatedBy] = nil

			continue
		}

		creators[r.CreatedBy] = &Creator{ID: user.ID, Name: user.Name, Email: user.Email}
	}

	return creators
}

func (h *URLHandler) ListUserURLs(ctx context.Context, req *UserURLsRequest) (*URLListResponse, error) {
	actor, err := h.caller.required(ctx, "list_user_urls", req.Token)
	if err != nil {
		return nil, err
	}

	records, err := h.service.ListByCreator(ctx, identity.UserID(req.UserID), actor)
	if err != nil {
		return nil, toHTTPError(h.logger, "list_user_urls", err)
	}

	return urlList(records), nil
}

func (h *URLHandler) DeleteUser(ctx context.Context, req *DeleteUserRequest) (*DeleteUserResponse, error) {
	actor, err := h.caller.required(ctx, "delete_user", req.Token)
	if err != nil {
		return nil, err
	}

	result, err := h.service.DeleteUser(ctx, identity.UserID(req.ID), actor)
	if err != nil {
		return nil, toHTTPError(h.logger, "delete_user", err)
	}

	for _, record := range result.Records {
		h.publishDeleted(ctx, record, actor, analytics.DeletedWithUser)
	}

	resp := &DeleteUserResponse{}
	resp.Body.Message = "User and their URLs deleted"
	resp.Body.DeletedURLs = len(result.Records)
	resp.Body.Evicted = result.Evicted

	return resp, nil
}

func (h *URLHandler) publishDeleted(ctx context.Context, record *shortener.URLRecord, actor identity.Identity, reason string) {
	event := &analytics.URLDeletedEvent{
		ID:        string(record.ID),
		Code:      string(record.ShortCode),
		DeletedBy: string(actor.UserID),
		Reason:    reason,
		DeletedAt: time.Now(),
	}

	if err := h.publishers.URLDeleted(ctx, event); err != nil {
		h.logger.Error("failed to publish delete event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}
}

func urlList(records []*shortener.URLRecord) *URLListResponse {
	resp := &URLListResponse{}
	resp.Body.URLs = records

	if resp.Body.URLs == nil {
		resp.Body.URLs = []*shortener.URLRecord{}
	}

	return resp
}
