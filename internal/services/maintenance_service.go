package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/stwalsh4118/rentroll/internal/authz"
	"github.com/stwalsh4118/rentroll/internal/logger"
	"github.com/stwalsh4118/rentroll/internal/models"
	"github.com/stwalsh4118/rentroll/internal/repository"
	"github.com/stwalsh4118/rentroll/internal/storage"
)

// PhotoStorage persists maintenance photos and returns their public URLs.
type PhotoStorage interface {
	SaveMaintenancePhoto(requestID uint, filename string, r io.Reader) (string, error)
	Remove(url string) error
	RemoveMaintenance(requestID uint) error
}

// PhotoUpload is one uploaded file.
type PhotoUpload struct {
	Filename string
	Content  io.Reader
}

// MaintenanceInput is the body of a maintenance request creation.
type MaintenanceInput struct {
	LeaseID     uint                     `json:"leaseId" binding:"required"`
	Title       string                   `json:"title" binding:"required,max=255"`
	Description *string                  `json:"description"`
	Status      models.MaintenanceStatus `json:"status" binding:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED CANCELED"`
	Priority    models.Priority          `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	Contractor  *string                  `json:"contractor" binding:"omitempty,max=255"`
	Photos      []string                 `json:"photos"`
}

// MaintenancePatch is a partial update; nil fields are left unchanged.
type MaintenancePatch struct {
	Title       *string                   `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string                   `json:"description"`
	Status      *models.MaintenanceStatus `json:"status" binding:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED CANCELED"`
	Priority    *models.Priority          `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	Contractor  *string                   `json:"contractor" binding:"omitempty,max=255"`
	CompletedAt *DateTime                 `json:"completedAt"`
}

// MaintenanceService defines maintenance request operations. Requests are
// returned with their lease, tenant and unit loaded.
type MaintenanceService interface {
	List(ctx context.Context, actor authz.Actor) ([]models.MaintenanceRequest, error)
	Get(ctx context.Context, actor authz.Actor, id uint) (*models.MaintenanceRequest, error)
	Create(ctx context.Context, actor authz.Actor, in MaintenanceInput) (*models.MaintenanceRequest, error)

	// Update applies patch. completedAt is stamped the first time the
	// request becomes COMPLETED.
	Update(ctx context.Context, actor authz.Actor, id uint, patch MaintenancePatch) (*models.MaintenanceRequest, error)

	// Delete removes the request and its stored photos.
	Delete(ctx context.Context, actor authz.Actor, id uint) error

	// UploadPhotos stores the files and appends their URLs to the request.
	// It returns the URLs of the new photos only.
	UploadPhotos(ctx context.Context, actor authz.Actor, id uint, files []PhotoUpload) ([]string, error)
}

type maintenanceService struct {
	requests repository.MaintenanceRepository
	leases   repository.LeaseRepository
	photos   PhotoStorage
	log      *logger.Logger
	now      func() time.Time
}

// NewMaintenanceService creates a new instance of MaintenanceService.
func NewMaintenanceService(
	requests repository.MaintenanceRepository,
	leases repository.LeaseRepository,
	photos PhotoStorage,
	log *logger.Logger,
) MaintenanceService {
	return &maintenanceService{
		requests: requests,
		leases:   leases,
		photos:   photos,
		log:      log,
		now:      time.Now,
	}
}

func (s *maintenanceService) List(ctx context.Context, actor authz.Actor) ([]models.MaintenanceRequest, error) {
	if !authz.Can(actor, authz.ResourceMaintenance, authz.ActionList) {
		return nil, fmt.Errorf("%w: Not authorized to view maintenance requests", ErrForbidden)
	}
	requests, err := s.requests.List(ctx, authz.ListScope(actor), repository.MaintenanceFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list maintenance requests: %w", err)
	}
	return requests, nil
}

func (s *maintenanceService) Get(ctx context.Context, actor authz.Actor, id uint) (*models.MaintenanceRequest, error) {
	return s.load(ctx, actor, id, authz.ActionRead, "Not authorized to view this maintenance request")
}

func (s *maintenanceService) Create(ctx context.Context, actor authz.Actor, in MaintenanceInput) (*models.MaintenanceRequest, error) {
	lease, err := s.leases.FindByID(ctx, in.LeaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lease: %w", err)
	}
	if lease == nil {
		return nil, notFound("Lease")
	}
	if err := authorize(actor, authz.ResourceMaintenance, authz.ActionCreate, leaseOwner(lease),
		"Not authorized to create maintenance request for this lease"); err != nil {
		return nil, err
	}

	request := &models.MaintenanceRequest{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		Contractor:  in.Contractor,
		Photos:      in.Photos,
		LeaseID:     lease.ID,
	}
	if request.Status == "" {
		request.Status = models.MaintenancePending
	}
	if request.Priority == "" {
		request.Priority = models.PriorityMedium
	}
	if request.Photos == nil {
		request.Photos = []string{}
	}
	if request.Status == models.MaintenanceCompleted {
		completedAt := s.now().UTC()
		request.CompletedAt = &completedAt
	}

	if err := s.requests.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create maintenance request: %w", err)
	}

	s.log.Info("Maintenance request created", map[string]interface{}{
		"request_id": request.ID,
		"lease_id":   lease.ID,
		"priority":   request.Priority,
	})
	return s.reload(ctx, request.ID)
}

func (s *maintenanceService) Update(ctx context.Context, actor authz.Actor, id uint, patch MaintenancePatch) (*models.MaintenanceRequest, error) {
	request, err := s.load(ctx, actor, id, authz.ActionUpdate, "Not authorized to update this maintenance request")
	if err != nil {
		return nil, err
	}

	setString(&request.Title, patch.Title)
	if patch.Description != nil {
		request.Description = patch.Description
	}
	if patch.Priority != nil {
		request.Priority = *patch.Priority
	}
	if patch.Contractor != nil {
		request.Contractor = patch.Contractor
	}
	if patch.CompletedAt != nil {
		request.CompletedAt = timePtr(patch.CompletedAt)
	}
	if patch.Status != nil {
		request.Status = *patch.Status
		if request.Status == models.MaintenanceCompleted && request.CompletedAt == nil {
			completedAt := s.now().UTC()
			request.CompletedAt = &completedAt
		}
	}

	if err := s.requests.Update(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to update maintenance request: %w", err)
	}

	s.log.Info("Maintenance request updated", map[string]interface{}{
		"request_id": request.ID,
		"status":     request.Status,
	})
	return s.reload(ctx, request.ID)
}

func (s *maintenanceService) Delete(ctx context.Context, actor authz.Actor, id uint) error {
	if _, err := s.load(ctx, actor, id, authz.ActionDelete, "Not authorized to delete this maintenance request"); err != nil {
		return err
	}
	if err := s.requests.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete maintenance request: %w", err)
	}
	if err := s.photos.RemoveMaintenance(id); err != nil {
		s.log.Warn("Failed to remove maintenance photos", map[string]interface{}{
			"request_id": id,
			"error":      err.Error(),
		})
	}
	return nil
}

func (s *maintenanceService) UploadPhotos(ctx context.Context, actor authz.Actor, id uint, files []PhotoUpload) ([]string, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: at least one file is required", ErrBadRequest)
	}
	if _, err := s.load(ctx, actor, id, authz.ActionUpload, "Not authorized to upload photos for this maintenance request"); err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(files))
	for _, file := range files {
		url, err := s.photos.SaveMaintenancePhoto(id, file.Filename, file.Content)
		if err != nil {
			s.discard(urls)
			if errors.Is(err, storage.ErrNotImage) || errors.Is(err, storage.ErrTooLarge) {
				return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
			}
			return nil, fmt.Errorf("failed to store photo: %w", err)
		}
		urls = append(urls, url)
	}

	if _, err := s.requests.AppendPhotos(ctx, id, urls); err != nil {
		s.discard(urls)
		return nil, fmt.Errorf("failed to record photos: %w", err)
	}

	s.log.Info("Maintenance photos uploaded", map[string]interface{}{
		"request_id": id,
		"count":      len(urls),
	})
	return urls, nil
}

// discard removes photos stored by a failed upload.
func (s *maintenanceService) discard(urls []string) {
	for _, url := range urls {
		if err := s.photos.Remove(url); err != nil {
			s.log.Warn("Failed to remove orphaned photo", map[string]interface{}{
				"url":   url,
				"error": err.Error(),
			})
		}
	}
}

func (s *maintenanceService) load(ctx context.Context, actor authz.Actor, id uint, act authz.Action, denied string) (*models.MaintenanceRequest, error) {
	request, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load maintenance request: %w", err)
	}
	if request == nil {
		return nil, notFound("Maintenance request")
	}
	owner := authz.Owner{}
	if request.Lease != nil {
		owner = leaseOwner(request.Lease)
	}
	if err := authorize(actor, authz.ResourceMaintenance, act, owner, denied); err != nil {
		return nil, err
	}
	return request, nil
}

func (s *maintenanceService) reload(ctx context.Context, id uint) (*models.MaintenanceRequest, error) {
	request, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load maintenance request: %w", err)
	}
	if request == nil {
		return nil, notFound("Maintenance request")
	}
	return request, nil
}
