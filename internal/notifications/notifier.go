package notifications

import (
	"context"
	"fmt"

	"github.com/fleetyard/fleetyard-backend/pkg/db/models"
	pkgerrors "github.com/fleetyard/fleetyard-backend/pkg/errors"
	"github.com/fleetyard/fleetyard-backend/pkg/enums"
	"github.com/fleetyard/fleetyard-backend/pkg/logger"
)

// AdminDirectory resolves the user ids that receive fleet-wide alerts.
// Satisfied by the users repository.
type AdminDirectory interface {
	ListIDsByRole(ctx context.Context, role string) ([]int64, error)
}

// Notifier fans domain events out as in-app notifications. Every method
// logs and swallows failures so a broken notification never fails the
// mutation that produced it.
type Notifier struct {
	svc    Service
	admins AdminDirectory
	logg   *logger.Logger
}

// NewNotifier wires the event-to-notification adapter.
func NewNotifier(svc Service, admins AdminDirectory, logg *logger.Logger) (*Notifier, error) {
	if svc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications service required")
	}
	if admins == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "admin directory required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &Notifier{svc: svc, admins: admins, logg: logg}, nil
}

// NotifyLowStock alerts every admin that a part fell below its minimum.
func (n *Notifier) NotifyLowStock(ctx context.Context, part *models.Part) {
	if part == nil {
		return
	}
	related := "part"
	n.broadcastToAdmins(ctx, CreateParams{
		Title:       "Low stock",
		Message:     fmt.Sprintf("%s (%s) is down to %d units, minimum is %d", part.Name, part.SKU, part.Quantity, part.MinimumStock),
		Type:        enums.NotificationTypeLowStock,
		RelatedID:   &part.ID,
		RelatedType: &related,
	})
}

// NotifyAssigned tells the assignee a maintenance task landed on them.
func (n *Notifier) NotifyAssigned(ctx context.Context, task *models.Maintenance) {
	if task == nil || task.AssignedTo == nil {
		return
	}
	related := "maintenance"
	n.create(ctx, CreateParams{
		UserID:      *task.AssignedTo,
		Title:       "Maintenance assigned",
		Message:     fmt.Sprintf("%s for vehicle %d is assigned to you", task.Type, task.VehicleID),
		Type:        enums.NotificationTypeMaintenanceAssigned,
		RelatedID:   &task.ID,
		RelatedType: &related,
	})
}

// NotifyApprovalRequested alerts admins that an unscheduled task needs a
// decision.
func (n *Notifier) NotifyApprovalRequested(ctx context.Context, task *models.Maintenance) {
	if task == nil {
		return
	}
	related := "maintenance"
	n.broadcastToAdmins(ctx, CreateParams{
		Title:       "Approval requested",
		Message:     fmt.Sprintf("unscheduled %s for vehicle %d needs approval", task.Type, task.VehicleID),
		Type:        enums.NotificationTypeApprovalRequested,
		RelatedID:   &task.ID,
		RelatedType: &related,
	})
}

// NotifyOrderStatus tells the order's creator about a status change.
func (n *Notifier) NotifyOrderStatus(ctx context.Context, order *models.Order) {
	if order == nil {
		return
	}
	related := "order"
	n.create(ctx, CreateParams{
		UserID:      order.CreatedBy,
		Title:       "Order status changed",
		Message:     fmt.Sprintf("purchase order %s is now %s", order.OrderNumber, order.Status),
		Type:        enums.NotificationTypeOrderStatus,
		RelatedID:   &order.ID,
		RelatedType: &related,
	})
}

func (n *Notifier) broadcastToAdmins(ctx context.Context, params CreateParams) {
	ids, err := n.admins.ListIDsByRole(ctx, string(enums.UserRoleCompanyAdmin))
	if err != nil {
		n.logg.Error(ctx, "resolve admin recipients", err)
		return
	}
	for _, id := range ids {
		params.UserID = id
		n.create(ctx, params)
	}
}

func (n *Notifier) create(ctx context.Context, params CreateParams) {
	if _, err := n.svc.Create(ctx, params); err != nil {
		n.logg.Error(n.logg.WithField(ctx, "notification_type", string(params.Type)), "deliver notification", err)
	}
}
