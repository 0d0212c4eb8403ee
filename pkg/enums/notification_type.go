package enums

// NotificationType labels the origin of an in-app notification.
type NotificationType string

const (
	NotificationTypeMaintenanceAssigned NotificationType = "maintenance_assigned"
	NotificationTypeMaintenanceDue      NotificationType = "maintenance_due"
	NotificationTypeApprovalRequested   NotificationType = "approval_requested"
	NotificationTypeLowStock            NotificationType = "low_stock"
	NotificationTypeOrderStatus         NotificationType = "order_status"
	NotificationTypeSystem              NotificationType = "system"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeMaintenanceAssigned,
	NotificationTypeMaintenanceDue,
	NotificationTypeApprovalRequested,
	NotificationTypeLowStock,
	NotificationTypeOrderStatus,
	NotificationTypeSystem,
}

func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}
