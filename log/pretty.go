package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles of a pretty handler. Styles are bound to a
// renderer for the handler's writer, so colors degrade to plain text when the
// writer is not a color terminal.
type palette struct {
	key, str, num, null, dur, when, punct lipgloss.Style
	yes, no                               lipgloss.Style
	trace, debug, info, warn, fail        lipgloss.Style
}

func newPalette(w io.Writer) *palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return &palette{
		key:   fg("8"),
		str:   fg("6"),
		num:   fg("3"),
		null:  fg("8").Italic(true),
		dur:   fg("5"),
		when:  fg("4"),
		punct: fg("8"),
		yes:   fg("2"),
		no:    fg("1"),
		trace: fg("8").Bold(true),
		debug: fg("4").Bold(true),
		info:  fg("2").Bold(true),
		warn:  fg("3").Bold(true),
		fail:  fg("1").Bold(true),
	}
}

func (p *palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.fail
	case l >= slog.LevelWarn:
		return p.warn
	case l >= slog.LevelInfo:
		return p.info
	case l >= slog.LevelDebug:
		return p.debug
	default:
		return p.trace
	}
}

// prettyHandler writes colorized records either as key=value pairs on one
// line or as an indented JSON-like object.
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	style  *palette
	attrs  []scopedAttr
	groups []string
	json   bool
}

func newPrettyHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	json bool,
) *prettyHandler {
	return &prettyHandler{
		opts:  *opts,
		mu:    &sync.Mutex{},
		w:     w,
		style: newPalette(w),
		json:  json,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}

	return level >= threshold
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	c := *h
	c.attrs = h.attrs[:len(h.attrs):len(h.attrs)]

	for _, a := range attrs {
		c.attrs = append(c.attrs, scopedAttr{groups: h.groups, Attr: a})
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.groups = append(h.groups[:len(h.groups):len(h.groups)], name)

	return &c
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]slog.Attr, 0, 4+len(h.attrs)+r.NumAttrs())

	if !r.Time.IsZero() {
		fields = h.builtin(fields, slog.Time(slog.TimeKey, r.Time))
	}

	fields = h.builtin(fields, slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil && src.File != "" {
			fields = h.builtin(fields,
				slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	fields = h.builtin(fields, slog.String(slog.MessageKey, r.Message))

	for _, a := range h.attrs {
		fields = insert(fields, a.groups, a.Attr)
	}

	r.Attrs(func(a slog.Attr) bool {
		fields = insert(fields, h.groups, a)

		return true
	})

	var buf bytes.Buffer

	if h.json {
		h.writeObject(&buf, fields, 1, r.Level)
	} else {
		h.writeLine(&buf, "", fields, r.Level)
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

// builtin appends a standard record field after ReplaceAttr, which renders
// the time layout and level names.
func (h *prettyHandler) builtin(fields []slog.Attr, a slog.Attr) []slog.Attr {
	if h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(nil, a)
	}

	if a.Key == "" {
		return fields
	}

	return append(fields, a)
}

// scopedAttr is an attribute added with WithAttrs along with the groups that
// were open at the time.
type scopedAttr struct {
	slog.Attr
	groups []string
}

// insert adds a to fields under the group path, merging into an existing
// group of the same name so that each group is rendered once.
func insert(fields []slog.Attr, path []string, a slog.Attr) []slog.Attr {
	if len(path) == 0 {
		return append(fields, a)
	}

	for i := len(fields) - 1; i >= 0; i-- {
		if fields[i].Key == path[0] && fields[i].Value.Kind() == slog.KindGroup {
			members := slices.Clone(fields[i].Value.Group())
			fields[i].Value = slog.GroupValue(insert(members, path[1:], a)...)

			return fields
		}
	}

	return append(fields, slog.Attr{
		Key:   path[0],
		Value: slog.GroupValue(insert(nil, path[1:], a)...),
	})
}

func (h *prettyHandler) writeLine(
	buf *bytes.Buffer,
	prefix string,
	attrs []slog.Attr,
	level slog.Level,
) {
	for _, a := range attrs {
		a.Value = a.Value.Resolve()
		if a.Equal(slog.Attr{}) {
			continue
		}

		if a.Value.Kind() == slog.KindGroup {
			p := prefix
			if a.Key != "" {
				p += a.Key + "."
			}

			h.writeLine(buf, p, a.Value.Group(), level)

			continue
		}

		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(h.style.key.Render(prefix + a.Key))
		buf.WriteString(h.style.punct.Render("="))
		buf.WriteString(h.value(prefix == "" && a.Key == slog.LevelKey, a.Value, level, false))
	}
}

func (h *prettyHandler) writeObject(
	buf *bytes.Buffer,
	attrs []slog.Attr,
	depth int,
	level slog.Level,
) {
	indent := strings.Repeat("  ", depth)

	buf.WriteString(h.style.punct.Render("{"))

	first := true

	for _, a := range attrs {
		a.Value = a.Value.Resolve()
		if a.Equal(slog.Attr{}) {
			continue
		}

		if !first {
			buf.WriteString(h.style.punct.Render(","))
		}

		first = false

		buf.WriteByte('\n')
		buf.WriteString(indent)
		buf.WriteString(h.style.key.Render(strconv.Quote(a.Key)))
		buf.WriteString(h.style.punct.Render(":"))
		buf.WriteByte(' ')

		if a.Value.Kind() == slog.KindGroup {
			h.writeObject(buf, a.Value.Group(), depth+1, level)

			continue
		}

		buf.WriteString(h.value(depth == 1 && a.Key == slog.LevelKey, a.Value, level, true))
	}

	if !first {
		buf.WriteByte('\n')
		buf.WriteString(indent[2:])
	}

	buf.WriteString(h.style.punct.Render("}"))
}

func (h *prettyHandler) value(
	isLevel bool,
	v slog.Value,
	level slog.Level,
	quote bool,
) string {
	str := func(s string) string {
		if quote {
			return strconv.Quote(s)
		}

		return s
	}

	if isLevel {
		return h.style.level(level).Render(str(v.String()))
	}

	switch v.Kind() {
	case slog.KindString:
		return h.style.str.Render(str(v.String()))
	case slog.KindInt64:
		return h.style.num.Render(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		return h.style.num.Render(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		return h.style.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))
	case slog.KindBool:
		if v.Bool() {
			return h.style.yes.Render("true")
		}

		return h.style.no.Render("false")
	case slog.KindDuration:
		return h.style.dur.Render(str(v.Duration().String()))
	case slog.KindTime:
		return h.style.when.Render(str(v.Time().Format(time.RFC3339Nano)))
	}

	a := v.Any()
	if a == nil {
		return h.style.null.Render("null")
	}

	if err, ok := a.(error); ok {
		return h.style.no.Render(str(err.Error()))
	}

	return h.style.str.Render(str(fmt.Sprint(a)))
}
