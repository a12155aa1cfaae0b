package conversion

// Label keys and fixed values stamped on generated resources
const (
	LabelApp          = "app"
	LabelManagedBy    = "managed-by"
	LabelMigratedFrom = "migrated-from"

	ManagedBy    = "cygni"
	MigratedFrom = "fargate"
)

// selectorLabels selects the pods of the application
func selectorLabels(appName string) map[string]string {
	return map[string]string{
		LabelApp: appName,
	}
}

func commonLabels(appName string) map[string]string {
	return map[string]string{
		LabelApp:       appName,
		LabelManagedBy: ManagedBy,
	}
}

func workloadLabels(appName string) map[string]string {
	labels := commonLabels(appName)
	labels[LabelMigratedFrom] = MigratedFrom
	return labels
}
