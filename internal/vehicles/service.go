package vehicles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/fleetyard/fleetyard-backend/internal/activity"
	"github.com/fleetyard/fleetyard-backend/pkg/db/models"
	"github.com/fleetyard/fleetyard-backend/pkg/enums"
	pkgerrors "github.com/fleetyard/fleetyard-backend/pkg/errors"
	"github.com/fleetyard/fleetyard-backend/pkg/pagination"
)

const qrCollisionRetries = 3

// Service defines vehicle management operations.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*VehicleDTO, error)
	Get(ctx context.Context, id int64) (*VehicleDTO, error)
	GetByQRCode(ctx context.Context, code string) (*VehicleDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	ListByAssignee(ctx context.Context, userID int64) ([]VehicleDTO, error)
	Update(ctx context.Context, params UpdateParams) (*VehicleDTO, error)
	Delete(ctx context.Context, actorID, id int64) error

	AttachPart(ctx context.Context, params AttachPartParams) (*VehiclePartDTO, error)
	ListParts(ctx context.Context, vehicleID int64) ([]VehiclePartDTO, error)
	UpdatePartBinding(ctx context.Context, params UpdateBindingParams) (*VehiclePartDTO, error)
	DetachPart(ctx context.Context, actorID, vehicleID, bindingID int64) error
}

type service struct {
	repo     Repository
	recorder activity.Recorder
}

// CreateParams carries the fields accepted when registering a vehicle.
// QRCode is optional; a label is generated when absent.
type CreateParams struct {
	ActorID                int64
	Name                   string
	Type                   string
	VIN                    string
	LicensePlate           *string
	Make                   string
	Model                  string
	Year                   int
	Mileage                int64
	AssignedTo             *int64
	Status                 enums.VehicleStatus
	NextMaintenanceDate    *time.Time
	NextMaintenanceMileage *int64
	QRCode                 string
}

// UpdateParams is an explicit partial update for a vehicle.
type UpdateParams struct {
	ActorID                int64
	ID                     int64
	Name                   *string
	Type                   *string
	LicensePlate           *string
	Make                   *string
	Model                  *string
	Year                   *int
	Mileage                *int64
	AssignedTo             **int64
	Status                 *enums.VehicleStatus
	NextMaintenanceDate    *time.Time
	NextMaintenanceMileage *int64
}

// ListParams configures filtering and pagination for the vehicle list.
type ListParams struct {
	Status     string
	Type       string
	AssignedTo int64
	Limit      int
	Cursor     string
}

// ListResult wraps returned vehicles and the cursor for the next page.
type ListResult struct {
	Items  []VehicleDTO `json:"items"`
	Cursor string       `json:"cursor"`
}

// AttachPartParams binds a part to a vehicle.
type AttachPartParams struct {
	ActorID             int64
	VehicleID           int64
	PartID              int64
	IsCustom            bool
	MaintenanceInterval int64
	NextMaintenanceDate *time.Time
}

// UpdateBindingParams mutates a vehicle-part binding.
type UpdateBindingParams struct {
	ActorID                int64
	VehicleID              int64
	BindingID              int64
	MaintenanceInterval    *int64
	LastMaintenanceDate    *time.Time
	LastMaintenanceMileage *int64
	NextMaintenanceDate    *time.Time
	NextMaintenanceMileage *int64
}

// NewService wires vehicle management dependencies.
func NewService(repo Repository, recorder activity.Recorder) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "vehicles repository required")
	}
	if recorder == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "activity recorder required")
	}
	return &service{repo: repo, recorder: recorder}, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*VehicleDTO, error) {
	vin := strings.ToUpper(strings.TrimSpace(params.VIN))
	if vin == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vin required")
	}
	if params.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if params.Status != "" && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}
	if params.QRCode != "" && !ValidQRCode(params.QRCode) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "qr code does not match the expected label shape")
	}

	count, err := s.repo.CountByVIN(ctx, vin)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check vin availability")
	}
	if count > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "vin already registered")
	}

	dto := CreateVehicleDTO{
		Name:                   params.Name,
		Type:                   enums.NormalizeVehicleType(params.Type),
		VIN:                    vin,
		LicensePlate:           params.LicensePlate,
		Make:                   params.Make,
		Model:                  params.Model,
		Year:                   params.Year,
		Mileage:                params.Mileage,
		AssignedTo:             params.AssignedTo,
		Status:                 params.Status,
		NextMaintenanceDate:    params.NextMaintenanceDate,
		NextMaintenanceMileage: params.NextMaintenanceMileage,
		QRCode:                 params.QRCode,
	}

	vehicle, err := s.createWithQRRetry(ctx, dto, params.QRCode == "")
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      params.ActorID,
		Action:      "vehicle.create",
		Description: fmt.Sprintf("registered vehicle %s (%s)", vehicle.Name, vehicle.VIN),
		RelatedID:   &vehicle.ID,
		RelatedType: relatedVehicle(),
	})
	return FromModel(vehicle), nil
}

// createWithQRRetry regenerates the label on a unique violation when the
// label was generated here rather than supplied by the caller.
func (s *service) createWithQRRetry(ctx context.Context, dto CreateVehicleDTO, generated bool) (*models.Vehicle, error) {
	attempts := 1
	if generated {
		attempts = qrCollisionRetries
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if generated {
			code, err := GenerateQRCode()
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate qr code")
			}
			dto.QRCode = code
		}

		vehicle, err := s.repo.Create(ctx, dto)
		if err == nil {
			return vehicle, nil
		}
		if !pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vehicle")
		}
		lastErr = err
		if !generated {
			break
		}
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, lastErr, "vehicle label or vin already registered")
}

func (s *service) Get(ctx context.Context, id int64) (*VehicleDTO, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}
	return FromModel(vehicle), nil
}

func (s *service) GetByQRCode(ctx context.Context, code string) (*VehicleDTO, error) {
	if !ValidQRCode(code) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid qr code")
	}
	vehicle, err := s.repo.FindByQRCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle by qr code")
	}
	return FromModel(vehicle), nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Status != "" {
		if _, err := enums.ParseVehicleStatus(params.Status); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
	}

	query := listVehiclesParams{
		Status:     params.Status,
		Type:       params.Type,
		AssignedTo: params.AssignedTo,
		Limit:      params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vehicles")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: FromModels(rows), Cursor: cursor}, nil
}

func (s *service) ListByAssignee(ctx context.Context, userID int64) ([]VehicleDTO, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	rows, err := s.repo.ListByAssignee(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vehicles by assignee")
	}
	return FromModels(rows), nil
}

func (s *service) Update(ctx context.Context, params UpdateParams) (*VehicleDTO, error) {
	if params.ID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	if params.Status != nil && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}

	update := UpdateVehicleDTO{
		Name:                   params.Name,
		LicensePlate:           params.LicensePlate,
		Make:                   params.Make,
		Model:                  params.Model,
		Year:                   params.Year,
		Mileage:                params.Mileage,
		AssignedTo:             params.AssignedTo,
		Status:                 params.Status,
		NextMaintenanceDate:    params.NextMaintenanceDate,
		NextMaintenanceMileage: params.NextMaintenanceMileage,
	}
	if params.Type != nil {
		normalized := enums.NormalizeVehicleType(*params.Type)
		update.Type = &normalized
	}

	changes := update.changes()
	if len(changes) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	affected, err := s.repo.Update(ctx, params.ID, changes)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update vehicle")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
	}

	vehicle, err := s.repo.FindByID(ctx, params.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload vehicle")
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      params.ActorID,
		Action:      "vehicle.update",
		Description: fmt.Sprintf("updated vehicle %s", vehicle.Name),
		RelatedID:   &vehicle.ID,
		RelatedType: relatedVehicle(),
	})
	return FromModel(vehicle), nil
}

func (s *service) Delete(ctx context.Context, actorID, id int64) error {
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}

	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete vehicle")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      actorID,
		Action:      "vehicle.delete",
		Description: fmt.Sprintf("deleted vehicle %d", id),
		RelatedID:   &id,
		RelatedType: relatedVehicle(),
	})
	return nil
}

func (s *service) AttachPart(ctx context.Context, params AttachPartParams) (*VehiclePartDTO, error) {
	if params.VehicleID <= 0 || params.PartID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id and part id required")
	}

	if _, err := s.repo.FindByID(ctx, params.VehicleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}

	binding := &models.VehiclePart{
		VehicleID:           params.VehicleID,
		PartID:              params.PartID,
		IsCustom:            params.IsCustom,
		MaintenanceInterval: params.MaintenanceInterval,
		NextMaintenanceDate: params.NextMaintenanceDate,
	}
	if err := s.repo.CreateBinding(ctx, binding); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach part")
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      params.ActorID,
		Action:      "vehicle.part_attach",
		Description: fmt.Sprintf("attached part %d to vehicle %d", params.PartID, params.VehicleID),
		RelatedID:   &params.VehicleID,
		RelatedType: relatedVehicle(),
	})
	return bindingFromModel(binding), nil
}

func (s *service) ListParts(ctx context.Context, vehicleID int64) ([]VehiclePartDTO, error) {
	if vehicleID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	rows, err := s.repo.ListBindings(ctx, vehicleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vehicle parts")
	}
	return bindingsFromModels(rows), nil
}

func (s *service) UpdatePartBinding(ctx context.Context, params UpdateBindingParams) (*VehiclePartDTO, error) {
	if params.VehicleID <= 0 || params.BindingID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id and binding id required")
	}

	changes := map[string]any{}
	if params.MaintenanceInterval != nil {
		changes["maintenance_interval"] = *params.MaintenanceInterval
	}
	if params.LastMaintenanceDate != nil {
		changes["last_maintenance_date"] = *params.LastMaintenanceDate
	}
	if params.LastMaintenanceMileage != nil {
		changes["last_maintenance_mileage"] = *params.LastMaintenanceMileage
	}
	if params.NextMaintenanceDate != nil {
		changes["next_maintenance_date"] = *params.NextMaintenanceDate
	}
	if params.NextMaintenanceMileage != nil {
		changes["next_maintenance_mileage"] = *params.NextMaintenanceMileage
	}
	if len(changes) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	affected, err := s.repo.UpdateBinding(ctx, params.VehicleID, params.BindingID, changes)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update part binding")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "part binding not found")
	}

	binding, err := s.repo.FindBinding(ctx, params.VehicleID, params.BindingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload part binding")
	}
	return bindingFromModel(binding), nil
}

func (s *service) DetachPart(ctx context.Context, actorID, vehicleID, bindingID int64) error {
	if vehicleID <= 0 || bindingID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "vehicle id and binding id required")
	}

	affected, err := s.repo.DeleteBinding(ctx, vehicleID, bindingID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "detach part")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "part binding not found")
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      actorID,
		Action:      "vehicle.part_detach",
		Description: fmt.Sprintf("detached part binding %d from vehicle %d", bindingID, vehicleID),
		RelatedID:   &vehicleID,
		RelatedType: relatedVehicle(),
	})
	return nil
}

func relatedVehicle() *string {
	t := "vehicle"
	return &t
}
