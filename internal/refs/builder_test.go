package refs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pwwpche/angular-template-lsp/internal/project"
	"github.com/pwwpche/angular-template-lsp/internal/shim"
	"github.com/pwwpche/angular-template-lsp/internal/template"
)

type docSource map[string]string

func (d docSource) DocumentText(uri string) (string, bool) {
	text, ok := d[uri]
	return text, ok
}

func newBuilder(t *testing.T, sources map[string]string, docs docSource) *Builder {
	t.Helper()
	registry := project.NewRegistry()
	for uri, text := range sources {
		registry.RegisterSource(uri, text)
	}
	return NewBuilder(shim.NewChecker(registry, docs))
}

// spanOf returns the span of the nth occurrence (0-based) of sub
func spanOf(t *testing.T, text, sub string, n int) template.SourceSpan {
	t.Helper()
	from := 0
	for {
		idx := strings.Index(text[from:], sub)
		require.GreaterOrEqual(t, idx, 0, "occurrence %d of %q not found", n, sub)
		start := from + idx
		if n == 0 {
			return template.NewSourceSpan(start, start+len(sub))
		}
		n--
		from = start + len(sub)
	}
}

func assertNoShimLeak(t *testing.T, entries []Entry) {
	t.Helper()
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.URI, shim.ShimSuffix), "shim URI leaked: %s", e.URI)
	}
}

func TestGetExpressionReferences(t *testing.T) {
	const appURI = "file:///app/app.ts"
	const appSource = `@Component({
  selector: 'app-root',
  template: '<p>{{total}}</p>',
})
export class AppComponent {
  total = 0;
}
`
	b := newBuilder(t, map[string]string{appURI: appSource}, nil)

	templateSpan := spanOf(t, appSource, "total", 0)
	memberSpan := spanOf(t, appSource, "total", 1)

	got := b.Get(appURI, templateSpan.Start+1)
	require.Equal(t, []Entry{
		{URI: appURI, Span: templateSpan},
		{URI: appURI, Span: memberSpan},
	}, got)
	assertNoShimLeak(t, got)

	// the result is the same from the class-member side
	assert.Equal(t, got, b.Get(appURI, memberSpan.Start))
}

func TestGetUnresolvablePositions(t *testing.T) {
	const appURI = "file:///app/app.ts"
	const appSource = `@Component({
  selector: 'app-root',
  template: '<p>{{total}}</p>',
})
export class AppComponent {
  total = 0;
}
`
	b := newBuilder(t, map[string]string{appURI: appSource}, nil)

	// decorator punctuation names no identifier
	assert.Nil(t, b.Get(appURI, 0))
	// an element no directive matches resolves nothing
	assert.Nil(t, b.Get(appURI, spanOf(t, appSource, "<p>", 0).Start+1))
	// untracked document
	assert.Nil(t, b.Get("file:///app/missing.ts", 0))
}

func TestGetTwoWayBindingUnion(t *testing.T) {
	const appURI = "file:///app/app.ts"
	const appSource = `@Component({
  selector: 'app-root',
  template: '<main [(count)]="total"></main>',
})
export class AppComponent {
  total = 0;
}
`
	const counterURI = "file:///app/counter.ts"
	const counterSource = `@Directive({ selector: '[count]' })
export class CounterDirective {
  @Input() count = 0;
  @Output() countChange = new EventEmitter();
}
`
	b := newBuilder(t, map[string]string{appURI: appSource, counterURI: counterSource}, nil)

	keySpan := spanOf(t, appSource, "count", 0)
	got := b.Get(appURI, keySpan.Start)

	// input and output halves resolve and union: the template key, the
	// raw selector mention, and both directive members
	require.Equal(t, []Entry{
		{URI: appURI, Span: keySpan},
		{URI: counterURI, Span: spanOf(t, counterSource, "count", 0)},
		{URI: counterURI, Span: spanOf(t, counterSource, "count", 1)},
		{URI: counterURI, Span: spanOf(t, counterSource, "countChange", 0)},
	}, got)
	assertNoShimLeak(t, got)
}

func TestGetElementReferences(t *testing.T) {
	const appURI = "file:///app/app.ts"
	const appSource = `@Component({
  selector: 'app-root',
  template: '<app-widget></app-widget>',
})
export class AppComponent {}
`
	const widgetURI = "file:///app/widget.ts"
	const widgetSource = `@Component({
  selector: 'app-widget',
  template: '<span></span>',
})
export class WidgetComponent {}
`
	b := newBuilder(t, map[string]string{appURI: appSource, widgetURI: widgetSource}, nil)

	got := b.Get(appURI, spanOf(t, appSource, "app-widget", 0).Start)
	require.Equal(t, []Entry{
		{URI: widgetURI, Span: spanOf(t, widgetSource, "WidgetComponent", 0)},
	}, got)
}

func TestGetDomBindingReferences(t *testing.T) {
	const appURI = "file:///app/app.ts"
	const appSource = `@Component({
  selector: 'app-root',
  template: '<main highlight tabindex="0"></main>',
})
export class AppComponent {}
`
	const dirURI = "file:///app/directives.ts"
	const dirSource = `@Directive({ selector: '[highlight]' })
export class HighlightDirective {}

@Directive({ selector: 'main' })
export class MainDirective {}
`
	b := newBuilder(t, map[string]string{appURI: appSource, dirURI: dirSource}, nil)

	// an attribute claimed by a directive selector resolves to the class
	got := b.Get(appURI, spanOf(t, appSource, "highlight", 0).Start)
	require.Equal(t, []Entry{
		{URI: dirURI, Span: spanOf(t, dirSource, "HighlightDirective", 0)},
	}, got)

	// a tag-only selector matches the host but never claims an attribute
	assert.Nil(t, b.Get(appURI, spanOf(t, appSource, "tabindex", 0).Start))

	// the tag itself resolves only directives selected by the tag; the
	// attribute-selected directive belongs to its attribute binding
	got = b.Get(appURI, spanOf(t, appSource, "<main", 0).Start+1)
	require.Equal(t, []Entry{
		{URI: dirURI, Span: spanOf(t, dirSource, "MainDirective", 0)},
	}, got)
}

func TestGetVariableReferences(t *testing.T) {
	const appURI = "file:///app/app.ts"
	const appSource = `@Component({
  selector: 'app-root',
  template: '<ng-template let-row="data">{{row}}</ng-template>',
})
export class AppComponent {
  data = [];
}
`
	b := newBuilder(t, map[string]string{appURI: appSource}, nil)

	keySpan := spanOf(t, appSource, "row", 0)
	useSpan := spanOf(t, appSource, "row", 1)

	// declaration key and usages resolve the local variable
	got := b.Get(appURI, keySpan.Start)
	require.Equal(t, []Entry{
		{URI: appURI, Span: keySpan},
		{URI: appURI, Span: useSpan},
	}, got)
	assert.Equal(t, got, b.Get(appURI, useSpan.Start+1))

	// the value side resolves the initializer expression instead
	valueSpan := spanOf(t, appSource, "data", 0)
	got = b.Get(appURI, valueSpan.Start)
	require.Equal(t, []Entry{
		{URI: appURI, Span: valueSpan},
		{URI: appURI, Span: spanOf(t, appSource, "data", 1)},
	}, got)
}

func TestGetPipeReferences(t *testing.T) {
	const appURI = "file:///app/app.ts"
	const appSource = `@Component({
  selector: 'app-root',
  template: '<p>{{total | twice}}</p>',
})
export class AppComponent {
  total = 0;
}
`
	const pipeURI = "file:///app/pipes.ts"
	const pipeSource = `@Pipe({ name: 'twice' })
export class TwicePipe {
  transform(value) { return value * 2; }
}
`
	b := newBuilder(t, map[string]string{appURI: appSource, pipeURI: pipeSource}, nil)

	got := b.Get(appURI, spanOf(t, appSource, "twice", 0).Start)
	require.Equal(t, []Entry{
		{URI: appURI, Span: spanOf(t, appSource, "twice", 0)},
		{URI: pipeURI, Span: spanOf(t, pipeSource, "twice", 0)},
	}, got)
}

func TestGetReferenceVarReferences(t *testing.T) {
	const appURI = "file:///app/app.ts"
	const appSource = `@Component({
  selector: 'app-root',
  template: '<b #bold></b>{{bold}}',
})
export class AppComponent {}
`
	b := newBuilder(t, map[string]string{appURI: appSource}, nil)

	declSpan := spanOf(t, appSource, "bold", 0)
	useSpan := spanOf(t, appSource, "bold", 1)

	got := b.Get(appURI, declSpan.Start)
	require.Equal(t, []Entry{
		{URI: appURI, Span: declSpan},
		{URI: appURI, Span: useSpan},
	}, got)
	assert.Equal(t, got, b.Get(appURI, useSpan.Start))
}

func TestGetReferencesStayInsideOwnComponent(t *testing.T) {
	const firstURI = "file:///app/first.ts"
	const firstSource = `@Component({
  selector: 'app-first',
  template: '<span #alpha></span>{{alpha}}',
})
export class FirstComponent {}
`
	const secondURI = "file:///app/second.ts"
	const secondSource = `@Component({
  selector: 'app-second',
  template: '<span #beta></span>{{beta}}',
})
export class SecondComponent {}
`
	b := newBuilder(t, map[string]string{firstURI: firstSource, secondURI: secondSource}, nil)

	// both shims name their reference var _t1; resolving one component's
	// reference must never surface spans from the other's template
	got := b.Get(firstURI, spanOf(t, firstSource, "alpha", 0).Start)
	require.Equal(t, []Entry{
		{URI: firstURI, Span: spanOf(t, firstSource, "alpha", 0)},
		{URI: firstURI, Span: spanOf(t, firstSource, "alpha", 1)},
	}, got)

	got = b.Get(secondURI, spanOf(t, secondSource, "beta", 0).Start)
	require.Equal(t, []Entry{
		{URI: secondURI, Span: spanOf(t, secondSource, "beta", 0)},
		{URI: secondURI, Span: spanOf(t, secondSource, "beta", 1)},
	}, got)
}

func TestGetEventParameterReferences(t *testing.T) {
	const appURI = "file:///app/app.ts"
	const appSource = `@Component({
  selector: 'app-root',
  template: '<main (click)="handle($event)"></main>',
})
export class AppComponent {
  handle(event) {}
}
`
	b := newBuilder(t, map[string]string{appURI: appSource}, nil)

	// only the authored usage resolves; the generated handler's
	// synthetic parameter is filtered out
	useSpan := spanOf(t, appSource, "$event", 0)
	got := b.Get(appURI, useSpan.Start+1)
	require.Equal(t, []Entry{{URI: appURI, Span: useSpan}}, got)
	assertNoShimLeak(t, got)
}

func TestGetExternalTemplateReferences(t *testing.T) {
	const appURI = "file:///app/app.ts"
	const appSource = `@Component({
  selector: 'app-root',
  templateUrl: './app.html',
})
export class AppComponent {
  total = 0;
}
`
	const tplURI = "file:///app/app.html"
	const tplText = `<p>{{total}}</p>`
	b := newBuilder(t, map[string]string{appURI: appSource}, docSource{tplURI: tplText})

	got := b.Get(tplURI, spanOf(t, tplText, "total", 0).Start)
	require.Equal(t, []Entry{
		{URI: appURI, Span: spanOf(t, appSource, "total", 0)},
		{URI: tplURI, Span: spanOf(t, tplText, "total", 0)},
	}, got)
	assertNoShimLeak(t, got)

	assert.Equal(t, got, b.Get(appURI, spanOf(t, appSource, "total", 0).Start))
}

func TestGetIndirectTemplateDropsShimHits(t *testing.T) {
	const appURI = "file:///app/app.ts"
	appSource := "@Component({\n" +
		"  selector: 'app-root',\n" +
		"  template: `<p>{{total}}</p>${extra}`,\n" +
		"})\n" +
		"export class AppComponent {\n" +
		"  total = 0;\n" +
		"}\n"
	b := newBuilder(t, map[string]string{appURI: appSource}, nil)

	// shim hits with no provenance are dropped; raw text matches remain
	got := b.Get(appURI, spanOf(t, appSource, "total = 0", 0).Start)
	require.Equal(t, []Entry{
		{URI: appURI, Span: spanOf(t, appSource, "total", 0)},
		{URI: appURI, Span: spanOf(t, appSource, "total", 1)},
	}, got)
}

func TestDedup(t *testing.T) {
	a := Entry{URI: "file:///a.ts", Span: template.NewSourceSpan(0, 4)}
	b := Entry{URI: "file:///b.ts", Span: template.NewSourceSpan(0, 4)}

	assert.Equal(t, []Entry{a, b}, dedup([]Entry{a, b, a, b}))
	assert.Nil(t, dedup(nil))
	assert.Nil(t, dedup([]Entry{}))
}
