package services

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/alimgiray/better-github/internal/models"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var (
	codeSpanPattern = regexp.MustCompile("```[\\s\\S]*?```|`[^`]+`")
	mentionPattern  = regexp.MustCompile(`(^|[^/\w[\]])@([a-zA-Z0-9](?:[a-zA-Z0-9-]{0,37}[a-zA-Z0-9])?)\b`)
	classPattern    = regexp.MustCompile(`^[a-zA-Z0-9 _-]+$`)
)

const (
	mentionPathPrefix = "/users/"
	highlightStyle    = "github"
)

// MarkdownService renders user markdown and source files to sanitized HTML
type MarkdownService struct {
	markdown  goldmark.Markdown
	formatter *chromahtml.Formatter
	policy    *bluemonday.Policy
}

func NewMarkdownService() *MarkdownService {
	formatter := chromahtml.New(chromahtml.WithClasses(true))

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(classPattern).OnElements("a", "span", "pre", "code", "div")

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(util.Prioritized(mentionLinkTransformer{}, 100)),
		),
		goldmark.WithRendererOptions(
			renderer.WithNodeRenderers(util.Prioritized(&codeBlockRenderer{formatter: formatter}, 100)),
		),
	)

	return &MarkdownService{
		markdown:  md,
		formatter: formatter,
		policy:    policy,
	}
}

// LinkifyMentions turns @username into a profile link, leaving code fences and inline code untouched
func LinkifyMentions(md string) string {
	var out strings.Builder
	last := 0
	for _, span := range codeSpanPattern.FindAllStringIndex(md, -1) {
		out.WriteString(linkifyText(md[last:span[0]]))
		out.WriteString(md[span[0]:span[1]])
		last = span[1]
	}
	out.WriteString(linkifyText(md[last:]))
	return out.String()
}

func linkifyText(s string) string {
	return mentionPattern.ReplaceAllString(s, "${1}[@${2}]("+mentionPathPrefix+"${2})")
}

// RenderMarkdown renders GitHub-flavoured markdown with mention links and highlighted code blocks
func (s *MarkdownService) RenderMarkdown(md string) (string, error) {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(LinkifyMentions(md)), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return s.policy.Sanitize(buf.String()), nil
}

// IsMarkdownFile reports whether a path should be shown as rendered markdown
func IsMarkdownFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".mdx":
		return true
	}
	return false
}

// HighlightFile renders a source file for the code viewer, detecting the language from its name.
// Markdown files are rendered instead of highlighted.
func (s *MarkdownService) HighlightFile(content, filename string) (*models.HighlightedFile, error) {
	lineCount := countLines(content)
	file := &models.HighlightedFile{
		Path:        filename,
		LineCount:   lineCount,
		GutterWidth: len(strconv.Itoa(lineCount)),
	}

	if IsMarkdownFile(filename) {
		html, err := s.RenderMarkdown(content)
		if err != nil {
			return nil, err
		}
		file.Language = "Markdown"
		file.Markdown = true
		file.HTML = html
		return file, nil
	}

	lexer := lexers.Match(filepath.Base(filename))
	if lexer == nil {
		lexer = lexers.Fallback
	}
	file.Language = lexer.Config().Name

	html, err := s.highlight(lexer, content)
	if err != nil {
		return nil, err
	}
	file.HTML = html
	return file, nil
}

func (s *MarkdownService) highlight(lexer chroma.Lexer, code string) (string, error) {
	var buf bytes.Buffer
	if err := highlightTo(&buf, s.formatter, lexer, code); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func highlightTo(w io.Writer, formatter *chromahtml.Formatter, lexer chroma.Lexer, code string) error {
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return fmt.Errorf("failed to tokenise code: %w", err)
	}
	style := styles.Get(highlightStyle)
	if err := formatter.Format(w, style, iterator); err != nil {
		return fmt.Errorf("failed to format code: %w", err)
	}
	return nil
}

func countLines(content string) int {
	if content == "" {
		return 0
	}
	lines := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		lines++
	}
	return lines
}

// mentionLinkTransformer marks links to user profiles with the mention class
type mentionLinkTransformer struct{}

func (mentionLinkTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if link, ok := n.(*ast.Link); ok && entering && bytes.HasPrefix(link.Destination, []byte(mentionPathPrefix)) {
			link.SetAttributeString("class", []byte("mention"))
		}
		return ast.WalkContinue, nil
	})
}

// codeBlockRenderer highlights fenced code blocks that name a known language
type codeBlockRenderer struct {
	formatter *chromahtml.Formatter
}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	block := node.(*ast.FencedCodeBlock)

	var code bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		code.Write(line.Value(source))
	}

	var lexer chroma.Lexer
	if language := string(block.Language(source)); language != "" {
		lexer = lexers.Get(language)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}

	if err := highlightTo(w, r.formatter, lexer, code.String()); err != nil {
		return ast.WalkStop, err
	}
	return ast.WalkSkipChildren, nil
}
