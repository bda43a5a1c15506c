package style

// Engine builds the plain and custom styles.
type Engine struct{}

// Plain returns the built-in style.
func (Engine) Plain(opts Options, decorate bool) Style {
	return NewPlain(opts, decorate)
}

// Custom loads the custom style from pluginPath.
func (Engine) Custom(pluginPath string, opts Options, decorate bool) (Style, error) {
	c, err := LoadCustom(pluginPath, opts, decorate)
	if err != nil {
		return nil, err
	}
	return c, nil
}
