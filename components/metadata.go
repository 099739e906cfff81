package components

// FieldDescriptor describes a component field for UI display.
type FieldDescriptor struct {
	ID           string  // Unique identifier
	Label        string  // Display name
	Format       string  // Printf format (e.g., "%.2f")
	Min          float32 // Minimum value (for bars)
	Max          float32 // Maximum value (for bars)
	IsBar        bool    // True to render as progress bar
	ShowWhenZero bool    // Show even when value is zero
	Group        string  // Logical grouping
}

// AgentFieldDescriptors returns metadata for Agent fields.
func AgentFieldDescriptors() []FieldDescriptor {
	return []FieldDescriptor{
		{ID: "health", Label: "Health", Format: "%.0f", Min: 0, Max: 1, IsBar: true, ShowWhenZero: true, Group: "vitals"},
		{ID: "max_health", Label: "Max Health", Format: "%.0f", ShowWhenZero: true, Group: "vitals"},
		{ID: "strength", Label: "Strength", Format: "%.0f", ShowWhenZero: true, Group: "growth"},
		{ID: "speed_points", Label: "Speed", Format: "%.0f", ShowWhenZero: true, Group: "growth"},
		{ID: "vitality", Label: "Vitality", Format: "%.0f", ShowWhenZero: true, Group: "growth"},
		{ID: "collected", Label: "Collected", Format: "%.0f", Group: "growth"},
	}
}

// AgentGroups returns the display order of agent field groups.
func AgentGroups() []string {
	return []string{"vitals", "growth"}
}

// GetAgentValue extracts an agent field value by ID.
func GetAgentValue(a *Agent, fieldID string) float32 {
	switch fieldID {
	case "health":
		return a.Health
	case "health_ratio":
		return a.HealthRatio()
	case "max_health":
		return a.MaxHealth()
	case "strength":
		return float32(a.Strength)
	case "speed_points":
		return float32(a.SpeedPoints)
	case "vitality":
		return float32(a.Vitality)
	case "collected":
		return float32(a.ResourcesCollected)
	default:
		return 0
	}
}
