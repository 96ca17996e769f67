package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/storerate/storerate-backend/internal/app/model"
	"github.com/storerate/storerate-backend/internal/app/repository"
	"github.com/storerate/storerate-backend/internal/storage"
	"github.com/storerate/storerate-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrStoreEmailExists  = errors.New("a store with this email already exists")
	ErrImageTooLarge     = errors.New("image payload exceeds the maximum allowed size")
	ErrOwnerNotFound     = errors.New("owner account not found")
	ErrNotStoreOwner     = errors.New("user does not own this store")
	ErrNoSuggestTerm     = errors.New("search term must be at least 2 characters")
	ErrInvalidStoreInput = errors.New("invalid store input")
)

const (
	// Encoded image payloads above this are rejected outright.
	maxImageBytes = 3_000_000
	// Inline-stored images are truncated to this many bytes when the
	// uploader is unavailable or fails.
	inlineImageLimit = 250_000

	suggestMinChars = 2
	suggestLimit    = 8

	topStoresDefaultMinCount = 3
	topStoresDefaultLimit    = 10
	topStoresMaxLimit        = 50
)

// StoreView is a store joined with its read-time rating aggregate and,
// when the viewer is known, the viewer's own rating of it.
type StoreView struct {
	model.Store
	AverageRating float64 `json:"average_rating"`
	RatingCount   int64   `json:"rating_count"`
	UserRating    *int    `json:"user_rating,omitempty"`
	UserComment   *string `json:"user_comment,omitempty"`

	// rawAverage keeps the full-precision mean for sorting and comparison.
	// AverageRating is its rounded presentation value: two stores that
	// display the same 2-decimal average can still order correctly.
	rawAverage float64
}

// TopStoresOptions bounds the /stores/top query. Zero values fall back to
// the defaults; Limit is capped.
type TopStoresOptions struct {
	MinCount int
	Limit    int
}

// OwnerDashboard is the per-store breakdown an owner sees, across all the
// stores they own or scoped to one of them.
type OwnerDashboard struct {
	Stores []OwnerStoreSummary `json:"stores"`
}

type OwnerStoreSummary struct {
	Store         model.Store    `json:"store"`
	AverageRating float64        `json:"average_rating"`
	RatingCount   int64          `json:"rating_count"`
	Raters        []model.Rating `json:"raters"`
}

// StoreService manages stores, their owners and their rating views.
// Creating a store with an unknown owner email provisions an owner account
// with a generated temporary password.
type StoreService interface {
	List(filter repository.StoreFilter, viewerID *uint) ([]StoreView, error)
	Get(storeID uint, viewerID *uint) (*StoreView, error)
	Top(opts TopStoresOptions) ([]StoreView, error)
	Suggest(term string) ([]model.Store, error)
	Create(ctx context.Context, input CreateStoreInput) (*StoreView, *ProvisionedOwner, error)
	Update(storeID uint, input UpdateStoreInput) (*StoreView, error)
	Delete(storeID uint) error
	Dashboard(ownerID uint, storeID *uint) (*OwnerDashboard, error)
	StoresByOwner(ownerID uint) ([]StoreView, error)
}

// CreateStoreInput carries the admin store-creation form. ImageData is the
// already-encoded image payload (a data URL or base64 string), optional.
type CreateStoreInput struct {
	Name             string
	Email            string
	Address          string
	Category         string
	Phone            string
	Website          string
	Description      string
	OwnerEmail       string
	OwnerName        string
	ImageData        string
	ImageContentType string

	// OwnerID attaches the store to a known account directly and takes
	// precedence over OwnerEmail. Set for owner self-service creation.
	OwnerID *uint
}

type UpdateStoreInput struct {
	Name        *string
	Address     *string
	Category    *string
	Phone       *string
	Website     *string
	Description *string
}

// ProvisionedOwner reports a newly created owner account so the admin can
// hand over the temporary password. Nil when the owner already existed.
type ProvisionedOwner struct {
	User         *model.User `json:"user"`
	TempPassword string      `json:"temp_password"`
}

type storeService struct {
	storeRepo   repository.StoreRepository
	ratingRepo  repository.RatingRepository
	userRepo    repository.UserRepository
	uploader    storage.ImageUploader
	provisioner UserProvisioner
}

func NewStoreService(
	storeRepo repository.StoreRepository,
	ratingRepo repository.RatingRepository,
	userRepo repository.UserRepository,
	uploader storage.ImageUploader,
	provisioner UserProvisioner,
) StoreService {
	return &storeService{
		storeRepo:   storeRepo,
		ratingRepo:  ratingRepo,
		userRepo:    userRepo,
		uploader:    uploader,
		provisioner: provisioner,
	}
}

func (s *storeService) List(filter repository.StoreFilter, viewerID *uint) ([]StoreView, error) {
	sortBy := filter.SortBy
	sortOrder := filter.SortOrder
	ratingSort := sortBy == "rating" || sortBy == "average_rating"
	if ratingSort {
		// Rating sorts happen here after aggregation, not in SQL.
		filter.SortBy = ""
	}

	stores, err := s.storeRepo.List(filter)
	if err != nil {
		return nil, err
	}

	views, err := s.attachAggregates(stores, viewerID)
	if err != nil {
		return nil, err
	}

	if ratingSort {
		sort.SliceStable(views, func(i, j int) bool {
			if sortOrder == "asc" {
				return views[i].rawAverage < views[j].rawAverage
			}
			return views[i].rawAverage > views[j].rawAverage
		})
	}
	return views, nil
}

func (s *storeService) Get(storeID uint, viewerID *uint) (*StoreView, error) {
	store, err := s.storeRepo.FindByID(storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}

	views, err := s.attachAggregates([]model.Store{*store}, viewerID)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Top returns the highest-rated stores that have at least MinCount ratings,
// so a single five-star rating cannot put a store on top of the list.
func (s *storeService) Top(opts TopStoresOptions) ([]StoreView, error) {
	minCount := opts.MinCount
	if minCount <= 0 {
		minCount = topStoresDefaultMinCount
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = topStoresDefaultLimit
	}
	if limit > topStoresMaxLimit {
		limit = topStoresMaxLimit
	}

	stores, err := s.storeRepo.List(repository.StoreFilter{})
	if err != nil {
		return nil, err
	}
	views, err := s.attachAggregates(stores, nil)
	if err != nil {
		return nil, err
	}

	eligible := make([]StoreView, 0, len(views))
	for _, v := range views {
		if v.RatingCount >= int64(minCount) {
			eligible = append(eligible, v)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].rawAverage != eligible[j].rawAverage {
			return eligible[i].rawAverage > eligible[j].rawAverage
		}
		return eligible[i].RatingCount > eligible[j].RatingCount
	})
	if len(eligible) > limit {
		eligible = eligible[:limit]
	}
	return eligible, nil
}

func (s *storeService) Suggest(term string) ([]model.Store, error) {
	term = strings.TrimSpace(term)
	if len(term) < suggestMinChars {
		return nil, ErrNoSuggestTerm
	}
	return s.storeRepo.Suggest(term, suggestLimit)
}

// Create registers a store and resolves its owner. An existing account
// with the owner email is promoted to store_owner if needed; an unknown
// email gets a provisioned account with a temporary password returned to
// the caller.
func (s *storeService) Create(ctx context.Context, input CreateStoreInput) (*StoreView, *ProvisionedOwner, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Email) == "" {
		return nil, nil, ErrInvalidStoreInput
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if existing, err := s.storeRepo.FindByEmail(input.Email); err == nil && existing != nil {
		return nil, nil, ErrStoreEmailExists
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	var ownerID *uint
	var provisioned *ProvisionedOwner
	switch {
	case input.OwnerID != nil:
		if _, err := s.userRepo.FindByID(*input.OwnerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, ErrOwnerNotFound
			}
			return nil, nil, err
		}
		ownerID = input.OwnerID
	case input.OwnerEmail != "":
		owner, prov, err := s.resolveOwner(input.OwnerEmail, input.OwnerName, input.Address)
		if err != nil {
			return nil, nil, err
		}
		ownerID = &owner.ID
		provisioned = prov
	}

	imageURL, imageStatus, err := s.storeImage(ctx, input.ImageData, input.ImageContentType)
	if err != nil {
		return nil, nil, err
	}

	store := &model.Store{
		Name:        strings.TrimSpace(input.Name),
		Email:       input.Email,
		Address:     input.Address,
		Category:    input.Category,
		Phone:       input.Phone,
		Website:     input.Website,
		Description: input.Description,
		ImageURL:    imageURL,
		OwnerID:     ownerID,
	}
	if err := s.storeRepo.Create(store); err != nil {
		return nil, nil, err
	}

	logger.Info("Store created", map[string]interface{}{
		"store_id":     store.ID,
		"name":         store.Name,
		"image_status": imageStatus,
	})

	view, err := s.Get(store.ID, nil)
	if err != nil {
		return nil, nil, err
	}
	return view, provisioned, nil
}

func (s *storeService) Update(storeID uint, input UpdateStoreInput) (*StoreView, error) {
	store, err := s.storeRepo.FindByID(storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		store.Name = *input.Name
	}
	if input.Address != nil {
		store.Address = *input.Address
	}
	if input.Category != nil {
		store.Category = *input.Category
	}
	if input.Phone != nil {
		store.Phone = *input.Phone
	}
	if input.Website != nil {
		store.Website = *input.Website
	}
	if input.Description != nil {
		store.Description = *input.Description
	}

	if err := s.storeRepo.Update(store); err != nil {
		return nil, err
	}
	return s.Get(store.ID, nil)
}

func (s *storeService) Delete(storeID uint) error {
	if _, err := s.storeRepo.FindByID(storeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStoreNotFound
		}
		return err
	}
	return s.storeRepo.Delete(storeID)
}

// Dashboard builds the owner view: every store the owner has, each with
// its aggregate and the list of users who rated it. When storeID is given
// it must belong to the owner and the dashboard is scoped to it.
func (s *storeService) Dashboard(ownerID uint, storeID *uint) (*OwnerDashboard, error) {
	stores, err := s.storeRepo.FindByOwner(ownerID)
	if err != nil {
		return nil, err
	}

	if storeID != nil {
		scoped := stores[:0]
		for _, st := range stores {
			if st.ID == *storeID {
				scoped = append(scoped, st)
			}
		}
		if len(scoped) == 0 {
			return nil, ErrNotStoreOwner
		}
		stores = scoped
	}

	dashboard := &OwnerDashboard{Stores: make([]OwnerStoreSummary, 0, len(stores))}
	for _, st := range stores {
		agg, err := s.ratingRepo.AggregateForStore(st.ID)
		if err != nil {
			return nil, err
		}
		raters, err := s.ratingRepo.ListByStore(st.ID)
		if err != nil {
			return nil, err
		}
		dashboard.Stores = append(dashboard.Stores, OwnerStoreSummary{
			Store:         st,
			AverageRating: Round2(agg.Average),
			RatingCount:   agg.Count,
			Raters:        raters,
		})
	}
	return dashboard, nil
}

func (s *storeService) StoresByOwner(ownerID uint) ([]StoreView, error) {
	stores, err := s.storeRepo.FindByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	return s.attachAggregates(stores, nil)
}

// attachAggregates joins stores with their rating aggregates (and the
// viewer's own ratings) using one GROUP BY query instead of per-store
// lookups. Averages are rounded here, at the presentation edge.
func (s *storeService) attachAggregates(stores []model.Store, viewerID *uint) ([]StoreView, error) {
	ids := make([]uint, len(stores))
	for i, st := range stores {
		ids[i] = st.ID
	}

	aggregates, err := s.ratingRepo.AggregatesForStores(ids)
	if err != nil {
		return nil, err
	}

	var userRatings map[uint]model.Rating
	if viewerID != nil {
		userRatings, err = s.ratingRepo.UserRatingsForStores(*viewerID, ids)
		if err != nil {
			return nil, err
		}
	}

	views := make([]StoreView, len(stores))
	for i, st := range stores {
		view := StoreView{Store: st}
		if agg, ok := aggregates[st.ID]; ok {
			view.rawAverage = agg.Average
			view.AverageRating = Round2(agg.Average)
			view.RatingCount = agg.Count
		}
		if userRatings != nil {
			if own, ok := userRatings[st.ID]; ok {
				value := own.Rating
				view.UserRating = &value
				if own.Comment != "" {
					comment := own.Comment
					view.UserComment = &comment
				}
			}
		}
		views[i] = view
	}
	return views, nil
}

// resolveOwner finds or provisions the owner account for a new store.
// Plain users are promoted to store_owner; admins keep their role.
func (s *storeService) resolveOwner(email, name, address string) (*model.User, *ProvisionedOwner, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	owner, err := s.userRepo.FindByEmail(email)
	if err == nil {
		if owner.Role == model.RoleUser {
			owner.Role = model.RoleStoreOwner
			if err := s.userRepo.Update(owner); err != nil {
				return nil, nil, err
			}
			logger.Info("User promoted to store owner", map[string]interface{}{
				"user_id": owner.ID,
				"email":   owner.Email,
			})
		}
		return owner, nil, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	owner, tempPassword, err := s.provisioner.Provision(email, name, address)
	if err != nil {
		return nil, nil, err
	}
	return owner, &ProvisionedOwner{User: owner, TempPassword: tempPassword}, nil
}

// storeImage runs the image pipeline: oversized payloads are rejected,
// uploads go to object storage, and when the uploader is missing or fails
// the image falls back to truncated inline storage so store creation never
// fails on the image alone. The returned status says which path was taken.
func (s *storeService) storeImage(ctx context.Context, data, contentType string) (string, string, error) {
	if data == "" {
		return "", "none", nil
	}
	if len(data) > maxImageBytes {
		return "", "", ErrImageTooLarge
	}

	if s.uploader == nil {
		return truncateInline(data), "inline-fallback-no-uploader", nil
	}

	url, err := s.uploader.Upload(ctx, []byte(data), contentType)
	if err != nil {
		if errors.Is(err, storage.ErrUploaderDisabled) {
			return truncateInline(data), "inline-fallback-no-uploader", nil
		}
		logger.Warn("Image upload failed, storing inline", map[string]interface{}{
			"error": err.Error(),
		})
		return truncateInline(data), "inline-fallback-error", nil
	}
	return url, "s3", nil
}

func truncateInline(data string) string {
	if len(data) > inlineImageLimit {
		return data[:inlineImageLimit]
	}
	return data
}
