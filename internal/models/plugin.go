package models

// Enforce is the coarse priority label a plugin author can write
type Enforce string

const (
	EnforcePre     Enforce = "pre"
	EnforceDefault Enforce = "default"
	EnforcePost    Enforce = "post"
)

// IsValid reports whether e is one of the three author-facing labels
func (e Enforce) IsValid() bool {
	switch e {
	case EnforcePre, EnforceDefault, EnforcePost:
		return true
	default:
		return false
	}
}

// PluginMeta is the scheduling metadata resolved for one plugin module.
// Pointer fields distinguish "absent" from the zero value.
type PluginMeta struct {
	Name      *string  `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Order     *int     `json:"order,omitempty" yaml:"order,omitempty" toml:"order,omitempty"`
	Enforce   *Enforce `json:"enforce,omitempty" yaml:"enforce,omitempty" toml:"enforce,omitempty"`
	DependsOn []string `json:"dependsOn,omitempty" yaml:"dependsOn,omitempty" toml:"dependsOn,omitempty"`
}

// HasName reports whether a name was recorded
func (m PluginMeta) HasName() bool {
	return m.Name != nil
}

// HasOrder reports whether an order was recorded
func (m PluginMeta) HasOrder() bool {
	return m.Order != nil
}

// IsEmpty reports whether no field is set
func (m PluginMeta) IsEmpty() bool {
	return m.Name == nil && m.Order == nil && m.Enforce == nil && m.DependsOn == nil
}

// Clone returns a deep copy so cached records are never shared mutably
func (m PluginMeta) Clone() PluginMeta {
	out := PluginMeta{}
	if m.Name != nil {
		out.Name = StringPtr(*m.Name)
	}
	if m.Order != nil {
		out.Order = IntPtr(*m.Order)
	}
	if m.Enforce != nil {
		e := *m.Enforce
		out.Enforce = &e
	}
	if m.DependsOn != nil {
		out.DependsOn = append(make([]string, 0, len(m.DependsOn)), m.DependsOn...)
	}
	return out
}

// MergeDefaults returns m with any unset field filled from defaults.
// Fields already present on m win.
func (m PluginMeta) MergeDefaults(defaults PluginMeta) PluginMeta {
	out := m.Clone()
	d := defaults.Clone()
	if out.Name == nil {
		out.Name = d.Name
	}
	if out.Order == nil {
		out.Order = d.Order
	}
	if out.Enforce == nil {
		out.Enforce = d.Enforce
	}
	if out.DependsOn == nil {
		out.DependsOn = d.DependsOn
	}
	return out
}

// Plugin is one entry of the plugin registry: a module path plus whatever
// metadata discovery resolved for it
type Plugin struct {
	Src        string `json:"src" yaml:"src" toml:"src"`
	PluginMeta `yaml:",inline"`
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string { return &s }

// IntPtr returns a pointer to i
func IntPtr(i int) *int { return &i }
