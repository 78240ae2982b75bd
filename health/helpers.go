package health

import "time"

func newStatus(component, state, message string) Status {
	return Status{
		Component: component,
		Healthy:   state == StateHealthy,
		Status:    state,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewHealthy reports a component as fully operational.
func NewHealthy(component, message string) Status {
	return newStatus(component, StateHealthy, message)
}

// NewUnhealthy reports a component as down.
func NewUnhealthy(component, message string) Status {
	return newStatus(component, StateUnhealthy, message)
}

// NewDegraded reports a component as up but impaired, for example an open
// connection that has gone quiet.
func NewDegraded(component, message string) Status {
	return newStatus(component, StateDegraded, message)
}

// Aggregate folds sub-statuses into a single status for the named parent.
// Any unhealthy member makes the parent unhealthy; otherwise any degraded
// member makes it degraded. An empty set counts as healthy.
func Aggregate(component string, subStatuses []Status) Status {
	worst := NewHealthy(component, "all components healthy")
	for _, sub := range subStatuses {
		switch {
		case sub.IsUnhealthy():
			worst = NewUnhealthy(component, sub.Component+" is unhealthy")
		case sub.IsDegraded() && !worst.IsUnhealthy():
			worst = NewDegraded(component, sub.Component+" is degraded")
		}
	}

	worst.SubStatuses = append([]Status(nil), subStatuses...)
	return worst
}
