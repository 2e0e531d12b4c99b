package blueprint

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kberrors "github.com/opskb/opskb/internal/errors"
)

func TestLooksLike(t *testing.T) {
	assert.True(t, LooksLike(Template))
	assert.False(t, LooksLike("# plain markdown\n\nsome text"))
	assert.False(t, LooksLike("mentions knowledge_blueprint without a code block"))
	assert.False(t, LooksLike("```json\n{}\n```"))
}

func TestParse_Template(t *testing.T) {
	doc, err := Parse(Template)
	require.NoError(t, err)

	assert.Equal(t, "Example process", doc.Metadata.Get("process_name").Text(" "))
	assert.Equal(t, []string{"example", "process"}, doc.Metadata.Tags())

	byTitle := make(map[string]Entry)
	for _, e := range doc.Entries {
		byTitle[e.Title] = e
	}

	overview, ok := byTitle["Example process - Overview"]
	require.True(t, ok)
	assert.Contains(t, overview.Answer, "Scope: Where this process applies")
	assert.Contains(t, overview.Answer, "Owner: Engineer name; Version: 1.0; Last reviewed: 2024-01-01")
	assert.Contains(t, overview.Answer, "Key equipment: Main unit A, Main unit B")
	assert.Contains(t, overview.Answer, "neighbouring steps")
	assert.Equal(t, []string{"example", "process", "blueprint", "overview"}, overview.Tags)

	procedure, ok := byTitle["Example process - Procedure"]
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(procedure.Answer, "1. First step"))
	assert.Contains(t, procedure.Answer, "3. Third step")

	params, ok := byTitle["Example process - Parameters"]
	require.True(t, ok)
	assert.Contains(t, params.Answer, "Parameter: Temperature | Target: 85 C")
	assert.NotContains(t, params.Answer, "---")

	_, ok = byTitle["Example process - Decision Points"]
	assert.True(t, ok)
	_, ok = byTitle["Example process - Risk Controls"]
	assert.True(t, ok)
	_, ok = byTitle["Example process - References"]
	assert.True(t, ok)

	faq, ok := byTitle["Example process - FAQ: What should be done when heavy foaming appears?"]
	require.True(t, ok)
	assert.Equal(t, "What should be done when heavy foaming appears?", faq.Question)
	assert.Contains(t, faq.Answer, "Symptom: evenly sized bubbles")
	assert.Contains(t, faq.Answer, "Verification: resume once sampled bubble density is below 2%.")
	assert.Contains(t, faq.Tags, "faq")
}

func TestParse_MissingMetadataBlock(t *testing.T) {
	_, err := Parse("# doc\n\n## Procedure\n1. do the thing\n")
	assert.True(t, kberrors.HasCode(err, kberrors.ErrCodeBlueprintMetadata))
}

func TestParse_InvalidMetadataJSON(t *testing.T) {
	_, err := Parse("```json\n{not json\n```\n")
	assert.True(t, kberrors.HasCode(err, kberrors.ErrCodeBlueprintMetadata))
}

func TestParse_WrongDiscriminator(t *testing.T) {
	_, err := Parse("```json\n{\"type\": \"runbook\"}\n```\n")
	assert.True(t, kberrors.HasCode(err, kberrors.ErrCodeBlueprintDiscriminator))
}

func TestParse_NoUsableContent(t *testing.T) {
	_, err := Parse("```json\n{\"type\": \"knowledge_blueprint\"}\n```\n")
	assert.True(t, kberrors.HasCode(err, kberrors.ErrCodeBlueprintEmpty))
}

func TestParse_ProcessNameFallbacks(t *testing.T) {
	doc, err := Parse("```json\n{\"type\": \"knowledge_blueprint\", \"name\": \"Degassing\", \"summary\": \"s\"}\n```\n")
	require.NoError(t, err)
	require.Len(t, doc.Entries, 1)
	assert.Equal(t, "Degassing - Overview", doc.Entries[0].Title)

	doc, err = Parse("```json\n{\"type\": \"knowledge_blueprint\", \"summary\": \"s\"}\n```\n")
	require.NoError(t, err)
	assert.Equal(t, "this process - Overview", doc.Entries[0].Title)
}

func TestParse_TagsFromCommaString(t *testing.T) {
	doc, err := Parse("```json\n{\"type\": \"knowledge_blueprint\", \"tags\": \"mixing, , qa\", \"summary\": \"s\"}\n```\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"mixing", "qa", "blueprint", "overview"}, doc.Entries[0].Tags)
}

func TestParse_FullWidthColonsAccepted(t *testing.T) {
	text := "```json\n{\"type\": \"knowledge_blueprint\", \"process_name\": \"P\"}\n```\n" +
		"## FAQ\n" +
		"### Q： 为什么温度偏高？\n" +
		"Symptom： 读数超过上限。\n" +
		"Cause： 冷却水流量不足。\n"
	doc, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, doc.Entries, 1)
	assert.Equal(t, "为什么温度偏高？", doc.Entries[0].Question)
	assert.Equal(t, "Symptom: 读数超过上限。\nCause: 冷却水流量不足。", doc.Entries[0].Answer)
}

func TestParse_FAQFieldContinuationLines(t *testing.T) {
	text := "```json\n{\"type\": \"knowledge_blueprint\", \"process_name\": \"P\"}\n```\n" +
		"## FAQ\n" +
		"### Q: How to restart safely?\n" +
		"Action: power down first,\n" +
		"then wait five minutes.\n"
	doc, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, doc.Entries, 1)
	assert.Equal(t, "Action: power down first,\nthen wait five minutes.", doc.Entries[0].Answer)
}

func TestParse_FAQWithoutFieldsFallsBackToSectionText(t *testing.T) {
	text := "```json\n{\"type\": \"knowledge_blueprint\", \"process_name\": \"P\"}\n```\n" +
		"## FAQ\n" +
		"### Q: Where is the manual?\n" +
		"In the control room cabinet.\n"
	doc, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, doc.Entries, 1)
	// No labelled fields: the whole section body is the answer.
	assert.Contains(t, doc.Entries[0].Answer, "Where is the manual?")
}

func TestScan_HeadingInsideFenceIsContent(t *testing.T) {
	text := "```json\n{\"type\": \"knowledge_blueprint\", \"process_name\": \"P\"}\n```\n" +
		"## Scenario\n" +
		"Example snippet:\n" +
		"```text\n" +
		"## Procedure\n" +
		"```\n" +
		"Real content.\n"
	doc, err := Parse(text)
	require.NoError(t, err)

	require.Len(t, doc.Entries, 1)
	assert.Equal(t, "P - Overview", doc.Entries[0].Title)
	assert.Contains(t, doc.Sections["Scenario"], "## Procedure")
	_, hasProcedure := doc.Sections["Procedure"]
	assert.False(t, hasProcedure)
}

func TestScan_SecondJSONFenceIgnored(t *testing.T) {
	text := "```json\n{\"type\": \"knowledge_blueprint\", \"process_name\": \"P\", \"summary\": \"s\"}\n```\n" +
		"## Scenario\n" +
		"```json\n{\"type\": \"something_else\"}\n```\n"
	doc, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, "P", doc.Metadata.Get("process_name").Text(" "))
}

func TestMetadataValue_Shapes(t *testing.T) {
	doc, err := Parse("```json\n" +
		`{"type": "knowledge_blueprint", "process_name": "P", "summary": "s",` +
		` "version": 2, "equipment": ["A", "", "B"], "nested": {"x": 1}}` +
		"\n```\n")
	require.NoError(t, err)

	meta := doc.Metadata
	assert.Equal(t, ValueString, meta.Get("version").Kind())
	assert.Equal(t, "2", meta.Get("version").Text(" "))
	assert.Equal(t, []string{"A", "B"}, meta.Get("equipment").Items())
	assert.False(t, meta.Get("nested").IsSet())
	assert.False(t, meta.Get("absent").IsSet())
}
