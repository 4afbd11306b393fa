package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/restokit/equipcore/internal/domain/models"
	"github.com/restokit/equipcore/internal/domain/ports"
	"github.com/restokit/equipcore/internal/logger"
)

// maintenanceService implements the MaintenanceService interface. It is the
// only mutation surface over equipment: every operation loads current state,
// runs the pure component, and persists equipment plus appended records as
// one atomic unit. Mutations on the same equipment id are serialized through
// a per-id lock; reads recompute from committed state and need none.
type maintenanceService struct {
	equipRepo  ports.EquipmentRepository
	recordRepo ports.RecordRepository
	cache      ports.CacheRepository // optional
	notifier   ports.Notifier
	catalog    *models.Catalog
	log        *zap.SugaredLogger
	now        func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMaintenanceService creates a new maintenance service instance. The
// cache may be nil; a nil notifier is replaced by a no-op.
func NewMaintenanceService(
	equipRepo ports.EquipmentRepository,
	recordRepo ports.RecordRepository,
	cache ports.CacheRepository,
	notifier ports.Notifier,
	catalog *models.Catalog,
) ports.MaintenanceService {
	if notifier == nil {
		notifier = ports.NopNotifier{}
	}
	if catalog == nil {
		catalog = models.NewCatalog(nil)
	}
	return &maintenanceService{
		equipRepo:  equipRepo,
		recordRepo: recordRepo,
		cache:      cache,
		notifier:   notifier,
		catalog:    catalog,
		log:        logger.Named("maintenance_service"),
		now:        time.Now,
		locks:      make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex serializing writers of one equipment id
func (s *maintenanceService) lockFor(equipmentID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[equipmentID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[equipmentID] = l
	}
	return l
}

func (s *maintenanceService) observe(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = string(models.KindOf(err))
	}
	logger.OperationTotal.WithLabelValues(op, status).Inc()
	logger.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (s *maintenanceService) invalidateCache(ctx context.Context, equipmentID string) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, equipmentID)
	}
}

// RegisterEquipment creates equipment for a store from a catalog definition
func (s *maintenanceService) RegisterEquipment(ctx context.Context, req *ports.RegisterEquipmentRequest) (equipment *models.Equipment, err error) {
	start := s.now()
	defer func() { s.observe("register_equipment", start, err) }()
	s.log.Infow("RegisterEquipment started", "store_id", req.StoreID, "catalog_name", req.CatalogName)

	def, ok := s.catalog.Lookup(req.CatalogName)
	if !ok {
		err = fmt.Errorf("%w: catalog entry %q", models.ErrNotFound, req.CatalogName)
		s.log.Errorw("RegisterEquipment unknown catalog entry", "catalog_name", req.CatalogName)
		return nil, err
	}

	id := req.EquipmentID
	if id == "" {
		id = uuid.NewString()
	}
	equipment = &models.Equipment{
		ID:                      id,
		StoreID:                 req.StoreID,
		Name:                    def.Name,
		Category:                def.Category,
		MaintenanceIntervalDays: def.MaintenanceIntervalDays,
		Status:                  models.StatusOperational,
	}
	if err = s.equipRepo.Create(ctx, equipment); err != nil {
		s.log.Errorw("RegisterEquipment failed to create", "equipment_id", id, "error", err)
		return nil, err
	}

	s.log.Infow("RegisterEquipment completed", "equipment_id", id, "name", def.Name)
	return equipment, nil
}

// MarkBroken reports an issue and moves operational equipment to repair
func (s *maintenanceService) MarkBroken(ctx context.Context, req *ports.MarkBrokenRequest) (equipment *models.Equipment, record *models.MaintenanceRecord, err error) {
	start := s.now()
	defer func() { s.observe("mark_broken", start, err) }()
	l := s.lockFor(req.EquipmentID)
	l.Lock()
	defer l.Unlock()

	s.log.Infow("MarkBroken started", "equipment_id", req.EquipmentID, "severity", req.Severity)

	current, err := s.equipRepo.GetByID(ctx, req.EquipmentID)
	if err != nil {
		return nil, nil, err
	}

	equipment, record, err = MarkBroken(current, MarkBrokenInput{
		Description: req.Description,
		Severity:    req.Severity,
		PerformedBy: req.PerformedBy,
	}, s.now())
	if err != nil {
		s.log.Errorw("MarkBroken rejected", "equipment_id", req.EquipmentID, "error", err)
		return nil, nil, err
	}

	if err = s.equipRepo.SaveWithRecords(ctx, equipment, []*models.MaintenanceRecord{record}); err != nil {
		s.log.Errorw("MarkBroken failed to persist", "equipment_id", req.EquipmentID, "error", err)
		return nil, nil, err
	}
	s.invalidateCache(ctx, req.EquipmentID)

	// Notification failures never roll back the mutation.
	if nerr := s.notifier.EquipmentBroken(ctx, equipment, record); nerr != nil {
		s.log.Warnw("MarkBroken notification failed", "equipment_id", req.EquipmentID, "error", nerr)
	}

	s.log.Infow("MarkBroken completed", "equipment_id", req.EquipmentID, "record_id", record.ID)
	return equipment, record, nil
}

// ResolveIssue closes the current issue and returns equipment to operational
func (s *maintenanceService) ResolveIssue(ctx context.Context, req *ports.ResolveIssueRequest) (equipment *models.Equipment, record *models.MaintenanceRecord, err error) {
	start := s.now()
	defer func() { s.observe("resolve_issue", start, err) }()
	l := s.lockFor(req.EquipmentID)
	l.Lock()
	defer l.Unlock()

	s.log.Infow("ResolveIssue started", "equipment_id", req.EquipmentID)

	current, err := s.equipRepo.GetByID(ctx, req.EquipmentID)
	if err != nil {
		return nil, nil, err
	}

	equipment, record, err = ResolveIssue(current, ResolveIssueInput{
		Notes:       req.Notes,
		Cost:        req.Cost,
		RepairedBy:  req.RepairedBy,
		PerformedBy: req.PerformedBy,
	}, s.now())
	if err != nil {
		s.log.Errorw("ResolveIssue rejected", "equipment_id", req.EquipmentID, "error", err)
		return nil, nil, err
	}

	if err = s.equipRepo.SaveWithRecords(ctx, equipment, []*models.MaintenanceRecord{record}); err != nil {
		s.log.Errorw("ResolveIssue failed to persist", "equipment_id", req.EquipmentID, "error", err)
		return nil, nil, err
	}
	s.invalidateCache(ctx, req.EquipmentID)

	s.log.Infow("ResolveIssue completed", "equipment_id", req.EquipmentID, "record_id", record.ID)
	return equipment, record, nil
}

// AddUpdate appends a tagged progress note while equipment is under repair
func (s *maintenanceService) AddUpdate(ctx context.Context, req *ports.AddUpdateRequest) (record *models.MaintenanceRecord, err error) {
	start := s.now()
	defer func() { s.observe("add_update", start, err) }()
	l := s.lockFor(req.EquipmentID)
	l.Lock()
	defer l.Unlock()

	s.log.Infow("AddUpdate started", "equipment_id", req.EquipmentID, "tag", req.Tag)

	current, err := s.equipRepo.GetByID(ctx, req.EquipmentID)
	if err != nil {
		return nil, err
	}

	record, err = AddUpdate(current, AddUpdateInput{
		Notes:       req.Notes,
		Tag:         req.Tag,
		PerformedBy: req.PerformedBy,
	}, s.now())
	if err != nil {
		s.log.Errorw("AddUpdate rejected", "equipment_id", req.EquipmentID, "error", err)
		return nil, err
	}

	if err = s.recordRepo.Append(ctx, record); err != nil {
		s.log.Errorw("AddUpdate failed to persist", "equipment_id", req.EquipmentID, "error", err)
		return nil, err
	}

	s.log.Infow("AddUpdate completed", "equipment_id", req.EquipmentID, "record_id", record.ID)
	return record, nil
}

// CompleteMaintenance records routine maintenance without a status change
func (s *maintenanceService) CompleteMaintenance(ctx context.Context, req *ports.CompleteMaintenanceRequest) (equipment *models.Equipment, record *models.MaintenanceRecord, err error) {
	start := s.now()
	defer func() { s.observe("complete_maintenance", start, err) }()
	l := s.lockFor(req.EquipmentID)
	l.Lock()
	defer l.Unlock()

	s.log.Infow("CompleteMaintenance started", "equipment_id", req.EquipmentID)

	current, err := s.equipRepo.GetByID(ctx, req.EquipmentID)
	if err != nil {
		return nil, nil, err
	}

	equipment, record, err = CompleteMaintenance(current, CompleteMaintenanceInput{
		Notes:       req.Notes,
		PerformedBy: req.PerformedBy,
	}, s.now())
	if err != nil {
		return nil, nil, err
	}

	if err = s.equipRepo.SaveWithRecords(ctx, equipment, []*models.MaintenanceRecord{record}); err != nil {
		s.log.Errorw("CompleteMaintenance failed to persist", "equipment_id", req.EquipmentID, "error", err)
		return nil, nil, err
	}
	s.invalidateCache(ctx, req.EquipmentID)

	s.log.Infow("CompleteMaintenance completed", "equipment_id", req.EquipmentID, "record_id", record.ID)
	return equipment, record, nil
}

// AddCleaningSchedule attaches a new recurring cleaning task
func (s *maintenanceService) AddCleaningSchedule(ctx context.Context, equipmentID string, schedule models.CleaningSchedule) (equipment *models.Equipment, err error) {
	start := s.now()
	defer func() { s.observe("add_cleaning_schedule", start, err) }()
	l := s.lockFor(equipmentID)
	l.Lock()
	defer l.Unlock()

	s.log.Infow("AddCleaningSchedule started", "equipment_id", equipmentID, "schedule", schedule.Name)

	if err = schedule.Validate(); err != nil {
		return nil, err
	}

	current, err := s.equipRepo.GetByID(ctx, equipmentID)
	if err != nil {
		return nil, err
	}
	if _, exists := current.ScheduleByName(schedule.Name); exists {
		err = fmt.Errorf("%w: schedule %q already exists", models.ErrValidation, schedule.Name)
		return nil, err
	}

	if schedule.NextDue.IsZero() {
		interval, ierr := models.FrequencyInterval(schedule.Frequency)
		if ierr != nil {
			return nil, ierr
		}
		schedule.NextDue = s.now().Add(interval)
	}

	equipment = current.Clone()
	equipment.CleaningSchedules = append(equipment.CleaningSchedules, schedule)
	if err = s.equipRepo.Save(ctx, equipment); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, equipmentID)

	s.log.Infow("AddCleaningSchedule completed", "equipment_id", equipmentID, "schedule", schedule.Name)
	return equipment, nil
}

// UpdateCleaningSchedule replaces a cleaning task identified by name. The
// completion history is preserved; the next due date is kept unless the
// incoming schedule sets one.
func (s *maintenanceService) UpdateCleaningSchedule(ctx context.Context, equipmentID, name string, schedule models.CleaningSchedule) (equipment *models.Equipment, err error) {
	start := s.now()
	defer func() { s.observe("update_cleaning_schedule", start, err) }()
	l := s.lockFor(equipmentID)
	l.Lock()
	defer l.Unlock()

	s.log.Infow("UpdateCleaningSchedule started", "equipment_id", equipmentID, "schedule", name)

	if err = schedule.Validate(); err != nil {
		return nil, err
	}

	current, err := s.equipRepo.GetByID(ctx, equipmentID)
	if err != nil {
		return nil, err
	}

	equipment = current.Clone()
	existing, ok := equipment.ScheduleByName(name)
	if !ok {
		err = fmt.Errorf("%w: schedule %q", models.ErrNotFound, name)
		return nil, err
	}
	if schedule.Name != name {
		if _, clash := equipment.ScheduleByName(schedule.Name); clash {
			err = fmt.Errorf("%w: schedule %q already exists", models.ErrValidation, schedule.Name)
			return nil, err
		}
	}

	schedule.CompletionHistory = existing.CompletionHistory
	if schedule.NextDue.IsZero() {
		schedule.NextDue = existing.NextDue
	}
	*existing = schedule

	if err = s.equipRepo.Save(ctx, equipment); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, equipmentID)

	s.log.Infow("UpdateCleaningSchedule completed", "equipment_id", equipmentID, "schedule", schedule.Name)
	return equipment, nil
}

// DeleteCleaningSchedule removes a cleaning task by name
func (s *maintenanceService) DeleteCleaningSchedule(ctx context.Context, equipmentID, name string) (equipment *models.Equipment, err error) {
	start := s.now()
	defer func() { s.observe("delete_cleaning_schedule", start, err) }()
	l := s.lockFor(equipmentID)
	l.Lock()
	defer l.Unlock()

	s.log.Infow("DeleteCleaningSchedule started", "equipment_id", equipmentID, "schedule", name)

	current, err := s.equipRepo.GetByID(ctx, equipmentID)
	if err != nil {
		return nil, err
	}

	equipment = current.Clone()
	kept := equipment.CleaningSchedules[:0]
	found := false
	for _, sc := range equipment.CleaningSchedules {
		if sc.Name == name {
			found = true
			continue
		}
		kept = append(kept, sc)
	}
	if !found {
		err = fmt.Errorf("%w: schedule %q", models.ErrNotFound, name)
		return nil, err
	}
	equipment.CleaningSchedules = kept

	if err = s.equipRepo.Save(ctx, equipment); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, equipmentID)

	s.log.Infow("DeleteCleaningSchedule completed", "equipment_id", equipmentID, "schedule", name)
	return equipment, nil
}

// CompleteCleaningSchedule records a completion, re-validates the checklist
// gate and advances the next due date.
func (s *maintenanceService) CompleteCleaningSchedule(ctx context.Context, req *ports.CompleteCleaningRequest) (schedule *models.CleaningSchedule, err error) {
	start := s.now()
	defer func() { s.observe("complete_cleaning_schedule", start, err) }()
	l := s.lockFor(req.EquipmentID)
	l.Lock()
	defer l.Unlock()

	s.log.Infow("CompleteCleaningSchedule started", "equipment_id", req.EquipmentID, "schedule", req.ScheduleName, "early", req.IsEarly)

	current, err := s.equipRepo.GetByID(ctx, req.EquipmentID)
	if err != nil {
		return nil, err
	}

	equipment := current.Clone()
	target, ok := equipment.ScheduleByName(req.ScheduleName)
	if !ok {
		err = fmt.Errorf("%w: schedule %q", models.ErrNotFound, req.ScheduleName)
		return nil, err
	}

	if missing := MissingRequiredItems(target, req.CompletedItems); len(missing) > 0 {
		err = fmt.Errorf("%w: required checklist items not completed: %v", models.ErrValidation, missing)
		s.log.Errorw("CompleteCleaningSchedule gate rejected", "equipment_id", req.EquipmentID, "schedule", req.ScheduleName, "missing", missing)
		return nil, err
	}

	completionDate := req.CompletionDate
	if completionDate.IsZero() {
		completionDate = s.now()
	}

	nextDue, err := ComputeNextDue(target, completionDate, req.IsEarly)
	if err != nil {
		return nil, err
	}

	target.CompletionHistory = append(target.CompletionHistory, models.CleaningCompletion{
		ID:                uuid.NewString(),
		Date:              completionDate,
		PerformedBy:       req.PerformedBy,
		Notes:             req.Notes,
		CompletedItems:    req.CompletedItems,
		IsEarlyCompletion: req.IsEarly,
	})
	target.NextDue = nextDue

	if err = s.equipRepo.Save(ctx, equipment); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, req.EquipmentID)

	s.log.Infow("CompleteCleaningSchedule completed", "equipment_id", req.EquipmentID, "schedule", req.ScheduleName, "next_due", nextDue)
	return target, nil
}

// DeleteRecord hard-deletes a single maintenance record
func (s *maintenanceService) DeleteRecord(ctx context.Context, equipmentID, recordID string) (err error) {
	start := s.now()
	defer func() { s.observe("delete_record", start, err) }()
	l := s.lockFor(equipmentID)
	l.Lock()
	defer l.Unlock()

	s.log.Infow("DeleteRecord started", "equipment_id", equipmentID, "record_id", recordID)
	if err = s.recordRepo.Delete(ctx, equipmentID, recordID); err != nil {
		s.log.Errorw("DeleteRecord failed", "equipment_id", equipmentID, "record_id", recordID, "error", err)
		return err
	}
	s.log.Infow("DeleteRecord completed", "equipment_id", equipmentID, "record_id", recordID)
	return nil
}

// GetEquipment retrieves equipment by id, read-through the cache when one is
// configured.
func (s *maintenanceService) GetEquipment(ctx context.Context, equipmentID string) (*models.Equipment, error) {
	if s.cache != nil {
		if equipment, err := s.cache.Get(ctx, equipmentID); err == nil && equipment != nil {
			logger.CacheHitTotal.WithLabelValues("hit").Inc()
			return equipment, nil
		}
		logger.CacheHitTotal.WithLabelValues("miss").Inc()
	}

	equipment, err := s.equipRepo.GetByID(ctx, equipmentID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, equipmentID, equipment, 300)
	}
	return equipment, nil
}

// GetIncidents reconstructs the incident list from the equipment's event log.
// Always recomputed from the committed log, never cached across writes.
func (s *maintenanceService) GetIncidents(ctx context.Context, equipmentID string) ([]*models.Incident, error) {
	records, err := s.recordRepo.ListByEquipment(ctx, equipmentID)
	if err != nil {
		return nil, err
	}
	logger.ReconstructionRecords.Observe(float64(len(records)))
	return ReconstructIncidents(records), nil
}

// ListEquipment retrieves paginated equipment for a store
func (s *maintenanceService) ListEquipment(ctx context.Context, storeID string, offset, limit int) ([]*models.Equipment, error) {
	return s.equipRepo.List(ctx, storeID, offset, limit)
}

// ListEquipmentByStatus retrieves equipment for a store filtered by status
func (s *maintenanceService) ListEquipmentByStatus(ctx context.Context, storeID string, status models.EquipmentStatus, offset, limit int) ([]*models.Equipment, error) {
	if err := models.ValidateStatus(status); err != nil {
		return nil, err
	}
	return s.equipRepo.ListByStatus(ctx, storeID, status, offset, limit)
}
