package executor

// Option struct
type Option struct {
	// ExitOnFail stops the run at the first failed statement,
	// otherwise failures are logged and execution goes on.
	ExitOnFail bool
	// Round is stamped on history records
	Round int
}

// DefaultOption exits on the first failure
func DefaultOption() *Option {
	return &Option{ExitOnFail: true}
}

// Clone option
func (o *Option) Clone() *Option {
	o1 := *o
	return &o1
}
