package fleet

import "strings"

// ActionClass is the three-way maintenance recommendation for an asset.
type ActionClass string

const (
	ActionUrgent  ActionClass = "urgent"
	ActionPlanned ActionClass = "planned"
	ActionNormal  ActionClass = "normal"
)

const (
	adviceUrgent  = "Immediate action: inspect bearing, check lubrication and alignment. Plan shutdown within 24-48 hours."
	advicePlanned = "Planned maintenance: increase monitoring frequency and schedule maintenance in the next planned window."
	adviceNormal  = "Normal operation: continue routine monitoring and preventive maintenance."
)

// ClassifyBucket maps a free-text risk bucket label to a recommended action by
// case-insensitive substring match. RED wins over AMBER/YELLOW/PLAN when a
// label mentions both.
func ClassifyBucket(bucket string) (ActionClass, string) {
	upper := strings.ToUpper(bucket)

	if strings.Contains(upper, "RED") {
		return ActionUrgent, adviceUrgent
	}
	if strings.Contains(upper, "AMBER") || strings.Contains(upper, "YELLOW") || strings.Contains(upper, "PLAN") {
		return ActionPlanned, advicePlanned
	}
	return ActionNormal, adviceNormal
}
