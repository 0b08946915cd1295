package sitecmd

// FeatureGates exposes runtime feature toggles required by site command handlers.
type FeatureGates struct {
	SiteEnabled func() bool
}

func (g FeatureGates) siteEnabled() bool {
	if g.SiteEnabled == nil {
		return true
	}
	return g.SiteEnabled()
}
