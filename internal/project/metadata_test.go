package project

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanOne(t *testing.T, source string) (comps []*ComponentMeta, dirs []*DirectiveMeta, pipes []*PipeMeta) {
	t.Helper()
	return scanSource("file:///src/app.ts", source)
}

func TestScanComponent(t *testing.T) {
	source := `import { Component } from '@angular/core';

@Component({
  selector: 'app-hero',
  template: '<div>{{name}}</div>',
})
export class HeroComponent {
  name = 'hero';
}
`
	comps, dirs, pipes := scanOne(t, source)

	require.Len(t, comps, 1)
	require.Len(t, dirs, 1, "a component is also a directive")
	assert.Empty(t, pipes)

	comp := comps[0]
	assert.Equal(t, "HeroComponent", comp.Name)
	assert.Equal(t, "file:///src/app.ts", comp.URI)
	assert.Equal(t, "app-hero", comp.Selector)
	assert.True(t, comp.Component)

	nameIdx := strings.Index(source, "HeroComponent")
	assert.Equal(t, nameIdx, comp.NameSpan.Start)
	assert.Equal(t, nameIdx+len("HeroComponent"), comp.NameSpan.End)

	assert.True(t, comp.InlineTemplate)
	assert.False(t, comp.TemplateIndirect)
	assert.Equal(t, "<div>{{name}}</div>", comp.TemplateText)
	assert.Equal(t, strings.Index(source, "<div>"), comp.TemplateStart)
}

func TestScanDecoratorAttachment(t *testing.T) {
	// The decorator sits on the export_statement for exported classes
	// and directly on the class_declaration otherwise. Both forms must
	// register.
	exported := `@Directive({ selector: '[appMark]' })
export class MarkDirective {}
`
	_, dirs, _ := scanOne(t, exported)
	require.Len(t, dirs, 1)
	assert.Equal(t, "MarkDirective", dirs[0].Name)

	unexported := `@Directive({ selector: '[appMark]' })
class MarkDirective {}
`
	_, dirs, _ = scanOne(t, unexported)
	require.Len(t, dirs, 1)
	assert.Equal(t, "MarkDirective", dirs[0].Name)
}

func TestScanComponentWithTemplateURL(t *testing.T) {
	source := `@Component({
  selector: 'app-hero',
  templateUrl: './views/hero.html',
})
export class HeroComponent {}
`
	comps, _, _ := scanOne(t, source)

	require.Len(t, comps, 1)
	assert.False(t, comps[0].InlineTemplate)
	assert.Equal(t, "file:///src/views/hero.html", comps[0].TemplateURI)
}

func TestScanComponentWithInterpolatedTemplate(t *testing.T) {
	source := "@Component({\n" +
		"  selector: 'app-hero',\n" +
		"  template: `<div>${extra}</div>`,\n" +
		"})\n" +
		"export class HeroComponent {}\n"
	comps, _, _ := scanOne(t, source)

	require.Len(t, comps, 1)
	assert.True(t, comps[0].InlineTemplate)
	assert.True(t, comps[0].TemplateIndirect, "interpolated template text has no static provenance")
}

func TestScanComponentWithBacktickTemplate(t *testing.T) {
	source := "@Component({\n" +
		"  selector: 'app-hero',\n" +
		"  template: `<b>hi</b>`,\n" +
		"})\n" +
		"export class HeroComponent {}\n"
	comps, _, _ := scanOne(t, source)

	require.Len(t, comps, 1)
	assert.True(t, comps[0].InlineTemplate)
	assert.False(t, comps[0].TemplateIndirect)
	assert.Equal(t, "<b>hi</b>", comps[0].TemplateText)
}

func TestScanDirective(t *testing.T) {
	source := `import { Directive, Input, Output } from '@angular/core';

@Directive({ selector: '[highlight]', exportAs: 'highlight' })
export class HighlightDirective {
  @Input() highlight = '';
  @Input('level') intensity = 0;
  @Output() done = new EventEmitter();
}
`
	comps, dirs, _ := scanOne(t, source)

	assert.Empty(t, comps)
	require.Len(t, dirs, 1)

	dir := dirs[0]
	assert.Equal(t, "HighlightDirective", dir.Name)
	assert.Equal(t, "[highlight]", dir.Selector)
	assert.Equal(t, "highlight", dir.ExportAs)
	assert.False(t, dir.Component)

	require.Len(t, dir.Inputs, 2)
	assert.Equal(t, "highlight", dir.Inputs[0].ClassProperty)
	assert.Equal(t, "highlight", dir.Inputs[0].BindingName)
	assert.Equal(t, "intensity", dir.Inputs[1].ClassProperty)
	assert.Equal(t, "level", dir.Inputs[1].BindingName, "alias overrides the member name")

	require.Len(t, dir.Outputs, 1)
	assert.Equal(t, "done", dir.Outputs[0].ClassProperty)

	in, ok := dir.Input("level")
	require.True(t, ok)
	assert.Equal(t, "intensity", in.ClassProperty)
	_, ok = dir.Input("intensity")
	assert.False(t, ok, "inputs resolve by binding name, not member name")

	out, ok := dir.Output("done")
	require.True(t, ok)
	assert.Equal(t, "done", out.ClassProperty)
}

func TestScanPipe(t *testing.T) {
	source := `@Pipe({ name: 'shorten' })
export class ShortenPipe {
  transform(value) { return value; }
}
`
	comps, dirs, pipes := scanOne(t, source)

	assert.Empty(t, comps)
	assert.Empty(t, dirs)
	require.Len(t, pipes, 1)
	assert.Equal(t, "shorten", pipes[0].Name)
	assert.Equal(t, "ShortenPipe", pipes[0].ClassName)
}

func TestScanMultipleClasses(t *testing.T) {
	source := `@Directive({ selector: '[first]' })
export class FirstDirective {}

export class Helper {}

@Component({ selector: 'app-second', template: '<p></p>' })
export class SecondComponent {}
`
	comps, dirs, _ := scanOne(t, source)

	require.Len(t, comps, 1)
	require.Len(t, dirs, 2)
	assert.Equal(t, "FirstDirective", dirs[0].Name)
	assert.Equal(t, "SecondComponent", dirs[1].Name)
}

func TestScanUnparseableSource(t *testing.T) {
	// tree-sitter error recovery should still find the intact class
	source := `const broken = {{{;

@Directive({ selector: '[ok]' })
export class OkDirective {}
`
	_, dirs, _ := scanOne(t, source)
	require.Len(t, dirs, 1)
	assert.Equal(t, "OkDirective", dirs[0].Name)
}

func TestResolveTemplateURI(t *testing.T) {
	tests := []struct {
		name      string
		sourceURI string
		url       string
		want      string
	}{
		{
			name:      "sibling file",
			sourceURI: "file:///src/app/hero.ts",
			url:       "./hero.html",
			want:      "file:///src/app/hero.html",
		},
		{
			name:      "parent directory",
			sourceURI: "file:///src/app/hero.ts",
			url:       "../shared/hero.html",
			want:      "file:///src/shared/hero.html",
		},
		{
			name:      "bare relative path",
			sourceURI: "file:///src/hero.ts",
			url:       "hero.html",
			want:      "file:///src/hero.html",
		},
		{
			name:      "absolute URI passes through",
			sourceURI: "file:///src/hero.ts",
			url:       "file:///other/hero.html",
			want:      "file:///other/hero.html",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveTemplateURI(tt.sourceURI, tt.url))
		})
	}
}
