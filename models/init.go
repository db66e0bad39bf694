package models

// All lists every model that must exist in the database, in migration order.
func All() []interface{} {
	return []interface{}{
		&GuildFeatureOverride{},
		&FeatureSetting{},
		&Rollout{},
	}
}
