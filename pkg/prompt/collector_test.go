package prompt

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/goliatone/go-formpost/pkg/model"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDriver struct {
	inputs       []string
	passwords    []string
	textAreas    []string
	confirm      []bool
	selectIdx    []int
	multiIdx     [][]int
	infoMessages []string
	acks         []string
	asked        []string
	inputPos     int
	passPos      int
	textPos      int
	confirmPos   int
	selectPos    int
	multiPos     int
	err          error
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.asked = append(s.asked, "input:"+cfg.Message)
	if s.err != nil {
		return "", s.err
	}
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, cfg InputConfig) (string, error) {
	s.asked = append(s.asked, "password:"+cfg.Message)
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.asked = append(s.asked, "confirm:"+cfg.Message)
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.asked = append(s.asked, "select:"+cfg.Message)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	s.asked = append(s.asked, "multiselect:"+cfg.Message)
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	s.asked = append(s.asked, "textarea:"+cfg.Message)
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Acknowledge(_ context.Context, msg string) error {
	s.acks = append(s.acks, msg)
	return nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func generateForm() model.FormModel {
	return model.FormModel{
		OperationID: "generate",
		Fields: []model.Field{
			{Name: "text", Label: "Text", Type: model.FieldTypeString, Required: true, Metadata: map[string]string{model.MetadataInput: "textarea"}},
			{Name: "guidance", Label: "Guidance", Type: model.FieldTypeString},
			{Name: "provider", Label: "Provider", Type: model.FieldTypeString, Enum: []any{"openai", "anthropic"}, Default: "openai"},
			{Name: "model", Label: "Model", Type: model.FieldTypeString, Default: "gpt-4o-mini"},
			{Name: "api_key", Label: "API key", Type: model.FieldTypeString, Format: "password", Required: true},
			{Name: "generate_notes", Label: "Generate notes", Type: model.FieldTypeBoolean, Default: false},
			{Name: "template_file", Label: "Template file", Type: model.FieldTypeFile, Required: true, Metadata: map[string]string{model.MetadataAccept: ".pptx,.potx"}},
		},
	}
}

func writeTemplate(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("PK"), 0o644))
	return path
}

func TestCollect_PromptsMissingFieldsInOrder(t *testing.T) {
	template := writeTemplate(t, "brand.potx")
	driver := &stubDriver{
		textAreas: []string{"# Quarterly review"},
		inputs:    []string{"", template},
		selectIdx: []int{1},
		passwords: []string{"sk-test"},
		confirm:   []bool{true},
	}

	prefill := model.NewValues()
	prefill.Set("model", "gpt-4o")

	values, err := NewCollector(driver).Collect(context.Background(), generateForm(), prefill)
	require.NoError(t, err)

	wantAsked := []string{
		"textarea:Text",
		"input:Guidance",
		"select:Provider",
		"password:API key",
		"confirm:Generate notes",
		"input:Template file (path)",
	}
	if diff := cmp.Diff(wantAsked, driver.asked); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "# Quarterly review", values.Get("text"))
	assert.False(t, values.Has("guidance"))
	assert.Equal(t, "anthropic", values.Get("provider"))
	assert.Equal(t, "gpt-4o", values.Get("model"))
	assert.Equal(t, "sk-test", values.Get("api_key"))
	assert.Equal(t, "true", values.Get("generate_notes"))
	assert.Equal(t, []model.File{{Path: template}}, values.Files("template_file"))
	assert.Empty(t, driver.infoMessages)

	assert.False(t, prefill.Has("text"), "prefill must not be mutated")
}

func TestCollect_RepromptsInvalidAnswers(t *testing.T) {
	minVal := 1.0
	form := model.FormModel{Fields: []model.Field{
		{Name: "slides", Label: "Slides", Type: model.FieldTypeInteger, Required: true, Minimum: &minVal},
	}}
	driver := &stubDriver{inputs: []string{"", "many", "0", "12"}}

	values, err := NewCollector(driver).Collect(context.Background(), form, model.Values{})
	require.NoError(t, err)
	assert.Equal(t, "12", values.Get("slides"))
	assert.Equal(t, []string{
		"Invalid Slides: is required",
		"Invalid Slides: must be a whole number",
		"Invalid Slides: must be >= 1",
	}, driver.infoMessages)
}

func TestCollect_FileChecks(t *testing.T) {
	dir := t.TempDir()
	wrong := writeTemplate(t, "notes.txt")
	right := writeTemplate(t, "deck.pptx")
	form := model.FormModel{Fields: []model.Field{generateForm().Fields[6]}}
	driver := &stubDriver{inputs: []string{"", filepath.Join(dir, "missing.pptx"), dir, wrong, right}}

	values, err := NewCollector(driver).Collect(context.Background(), form, model.Values{})
	require.NoError(t, err)
	assert.Equal(t, right, values.Files("template_file")[0].Path)
	require.Len(t, driver.infoMessages, 4)
	assert.Equal(t, "Invalid Template file: a file is required", driver.infoMessages[0])
	assert.Contains(t, driver.infoMessages[1], "cannot read")
	assert.Contains(t, driver.infoMessages[2], "is a directory")
	assert.Contains(t, driver.infoMessages[3], "notes.txt must be one of .pptx, .potx")
}

func TestCollect_OptionalEnumCanBeSkipped(t *testing.T) {
	form := model.FormModel{Fields: []model.Field{
		{Name: "tone", Label: "Tone", Type: model.FieldTypeString, Enum: []any{"formal", "casual"}},
	}}
	driver := &stubDriver{selectIdx: []int{-1, 0}}

	values, err := NewCollector(driver).Collect(context.Background(), form, model.Values{})
	require.NoError(t, err)
	assert.False(t, values.Has("tone"))
	assert.Equal(t, []string{"Invalid Tone: pick one of the listed options"}, driver.infoMessages)
}

func TestCollect_Arrays(t *testing.T) {
	form := model.FormModel{Fields: []model.Field{
		{Name: "tags", Label: "Tags", Type: model.FieldTypeArray, Items: &model.Field{Type: model.FieldTypeString}},
		{Name: "layouts", Label: "Layouts", Type: model.FieldTypeArray, Required: true, Items: &model.Field{Type: model.FieldTypeString, Enum: []any{"title", "bullets", "image"}}},
	}}
	driver := &stubDriver{
		inputs:   []string{"q3, finance ,"},
		multiIdx: [][]int{{}, {0, 2}},
	}

	values, err := NewCollector(driver).Collect(context.Background(), form, model.Values{})
	require.NoError(t, err)
	assert.Equal(t, []string{"q3", "finance"}, values.All("tags"))
	assert.Equal(t, []string{"title", "image"}, values.All("layouts"))
	assert.Equal(t, []string{"Invalid Layouts: pick at least one option"}, driver.infoMessages)
}

func TestCollect_RequiredOnly(t *testing.T) {
	driver := &stubDriver{
		textAreas: []string{"hello"},
		passwords: []string{"sk"},
		inputs:    []string{writeTemplate(t, "a.pptx")},
	}

	values, err := NewCollector(driver, WithRequiredOnly(true)).Collect(context.Background(), generateForm(), model.Values{})
	require.NoError(t, err)
	assert.Equal(t, []string{"api_key", "template_file", "text"}, values.Names())
}

func TestCollect_Aborted(t *testing.T) {
	driver := &stubDriver{err: ErrAborted}
	form := model.FormModel{Fields: []model.Field{{Name: "guidance", Type: model.FieldTypeString}}}

	_, err := NewCollector(driver).Collect(context.Background(), form, model.Values{})
	require.ErrorIs(t, err, ErrAborted)
}

func TestCollect_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCollector(&stubDriver{}).Collect(ctx, generateForm(), model.Values{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestTranslateSurveyErr(t *testing.T) {
	assert.Equal(t, ErrAborted, translateSurveyErr(terminal.InterruptErr))
	other := errors.New("eof")
	assert.Equal(t, other, translateSurveyErr(other))
	assert.NoError(t, translateSurveyErr(nil))
}

func TestSelectHelpers(t *testing.T) {
	options := []string{"a", "b", "c"}
	assert.Equal(t, 1, indexOf(options, "b"))
	assert.Equal(t, -1, indexOf(options, "z"))
	assert.Equal(t, []int{0, 2}, indicesOf(options, []string{"c", "a"}))
	assert.Equal(t, []string{"a", "c"}, defaultsFromIndices(options, []int{0, 5, 2}))
}
