package logx

// Nop returns a Logger that discards everything.
func Nop() Logger { return discard{} }

// OrNop returns l, or a discarding Logger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return discard{}
	}
	return l
}

type discard struct{}

func (discard) Debug(string, ...Field) {}
func (discard) Info(string, ...Field)  {}
func (discard) Warn(string, ...Field)  {}
func (discard) Error(string, ...Field) {}
func (d discard) With(...Field) Logger { return d }
func (discard) Sync() error            { return nil }
