package directive

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	derrors "git.home.luguber.info/inful/docbib/internal/errors"
)

// Name is the directive name used in fence info strings.
const Name = "bibliography"

// KindBlock is the AST kind of a rendered bibliography block.
var KindBlock = ast.NewNodeKind("Bibliography")

// Block is a bibliography directive after rendering. HTML is empty when the
// directive failed.
type Block struct {
	ast.BaseBlock
	HTML string
}

// Kind implements ast.Node.
func (b *Block) Kind() ast.NodeKind { return KindBlock }

// Dump implements ast.Node.
func (b *Block) Dump(source []byte, level int) {
	ast.DumpHelper(b, source, level, map[string]string{"HTML": b.HTML}, nil)
}

var (
	docPathKey = parser.NewContextKey()
	errorsKey  = parser.NewContextKey()
)

// SetDocumentPath records the path of the document being parsed so relative
// directive paths can be resolved.
func SetDocumentPath(pc parser.Context, path string) {
	pc.Set(docPathKey, path)
}

// Errors returns the directive errors collected while parsing with pc.
func Errors(pc parser.Context) []error {
	errs, _ := pc.Get(errorsKey).([]error)
	return errs
}

func addError(pc parser.Context, err error) {
	pc.Set(errorsKey, append(Errors(pc), err))
}

// Extension returns a goldmark extension that renders bibliography fences
// with d.
func (d *Directive) Extension() goldmark.Extender {
	return &extension{directive: d}
}

type extension struct {
	directive *Directive
}

func (e *extension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(&transformer{directive: e.directive}, 100),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&blockRenderer{}, 100),
	))
}

type transformer struct {
	directive *Directive
}

func (t *transformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()

	var fences []*ast.FencedCodeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if fence, ok := n.(*ast.FencedCodeBlock); ok {
			if _, match := parseInfo(fence, source); match {
				fences = append(fences, fence)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	docPath, _ := pc.Get(docPathKey).(string)
	for _, fence := range fences {
		args, _ := parseInfo(fence, source)
		opts, content, err := parseBody(fenceBody(fence, source))

		block := &Block{}
		if err == nil {
			block.HTML, err = t.directive.Run(Invocation{
				Args:    args,
				Options: opts,
				Content: content,
				DocPath: docPath,
			})
		}
		if err != nil {
			addError(pc, withLine(err, fence, source))
		}
		fence.Parent().ReplaceChild(fence.Parent(), fence, block)
	}
}

// parseInfo reports whether the fence is a bibliography directive and
// returns its file arguments.
func parseInfo(fence *ast.FencedCodeBlock, source []byte) ([]string, bool) {
	if fence.Info == nil {
		return nil, false
	}
	fields := strings.Fields(string(fence.Info.Segment.Value(source)))
	if len(fields) == 0 {
		return nil, false
	}
	if fields[0] != Name && fields[0] != "{"+Name+"}" {
		return nil, false
	}
	return fields[1:], true
}

func fenceBody(fence *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := fence.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}

var optionLine = regexp.MustCompile(`^:([A-Za-z_]+):(?:\s+(.*))?$`)

// parseBody splits leading `:name: value` lines from the inline content.
// A value continues on following lines indented deeper than its option
// line, so mappings may span several lines. Lines starting with @ always
// begin the inline BibTeX.
func parseBody(body string) (map[string]string, string, error) {
	opts := map[string]string{}
	lines := strings.SplitAfter(body, "\n")
	i := 0
	for i < len(lines) {
		line := strings.TrimRight(lines[i], "\r\n")
		m := optionLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			break
		}
		if _, dup := opts[m[1]]; dup {
			return nil, "", derrors.DirectiveInput("duplicate option " + m[1])
		}
		indent := indentOf(line)
		var cont []string
		for i++; i < len(lines); i++ {
			next := strings.TrimRight(lines[i], "\r\n")
			trimmed := strings.TrimSpace(next)
			if trimmed == "" || indentOf(next) <= indent || strings.HasPrefix(trimmed, "@") {
				break
			}
			cont = append(cont, next)
		}
		value := strings.TrimSpace(m[2])
		if len(cont) > 0 {
			value = strings.TrimSpace(value + "\n" + dedent(cont))
		}
		opts[m[1]] = value
	}
	return opts, strings.Join(lines[i:], ""), nil
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

// dedent strips the common leading indentation and joins the lines.
func dedent(lines []string) string {
	common := -1
	for _, l := range lines {
		if n := indentOf(l); common < 0 || n < common {
			common = n
		}
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l[common:]
	}
	return strings.Join(out, "\n")
}

func withLine(err error, fence *ast.FencedCodeBlock, source []byte) error {
	ce, ok := derrors.As(err)
	if !ok {
		return err
	}
	start := 0
	if fence.Lines().Len() > 0 {
		start = fence.Lines().At(0).Start
	} else if fence.Info != nil {
		start = fence.Info.Segment.Start
	}
	// The fence opens on the line before its first content line.
	line := bytes.Count(source[:start], []byte("\n"))
	if fence.Lines().Len() == 0 {
		line++
	}
	return ce.WithContext("line", line)
}

type blockRenderer struct{}

func (r *blockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindBlock, r.render)
}

func (r *blockRenderer) render(w util.BufWriter, _ []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	if b := n.(*Block); b.HTML != "" {
		_, _ = w.WriteString(b.HTML)
		_ = w.WriteByte('\n')
	}
	return ast.WalkSkipChildren, nil
}
