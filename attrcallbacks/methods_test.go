package attrcallbacks_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks"
)

// gadget declares its hooks as methods following the naming convention.
type gadget struct {
	*stubRecord
	calls []string
}

func newGadget() *gadget {
	return &gadget{stubRecord: newStubRecord("display_name", "tags")}
}

func (g *gadget) BeforeDisplayNameChange(_ context.Context, _, after any) (bool, error) {
	g.calls = append(g.calls, fmt.Sprintf("before_display_name_change(%v)", after))
	return after != "", nil
}

func (g *gadget) DisplayNameChanged(_ context.Context, before, after any) error {
	g.calls = append(g.calls, fmt.Sprintf("display_name_changed(%v,%v)", before, after))
	return nil
}

func (g *gadget) BeforeTagsAdd(_ context.Context, el attrcallbacks.Element) (bool, error) {
	g.calls = append(g.calls, fmt.Sprintf("before_tags_add(%s)", el))
	return true, nil
}

func (g *gadget) AfterTagsRemove(_ context.Context, el attrcallbacks.Element) error {
	g.calls = append(g.calls, fmt.Sprintf("after_tags_remove(%s)", el))
	if el.Value == "broken" {
		return errors.New("cannot remove broken")
	}

	return nil
}

// Unrelated methods are ignored.
func (g *gadget) Describe() string { return "gadget" }

type brokenGadget struct {
	*stubRecord
}

func (b *brokenGadget) BeforeNameChange(_ context.Context, _ string) bool { return true }

func Test_RegisterMethods_When_MethodsFollowTheConvention_Then_AllAreRegistered(t *testing.T) {
	// arrange
	reg := attrcallbacks.NewRegistry()

	// act
	err := attrcallbacks.RegisterMethods(reg, newGadget())

	// assert
	require.NoError(t, err)
	assert.Equal(t, []string{
		"after_tags_remove",
		"before_display_name_change",
		"before_tags_add",
		"display_name_changed",
	}, reg.HookNames())
}

func Test_RegisterMethods_When_Dispatching_Then_TheSavedRecordsMethodsAreCalled(t *testing.T) {
	// arrange
	reg := attrcallbacks.NewRegistry()
	require.NoError(t, attrcallbacks.RegisterMethods(reg, newGadget()))
	dispatcher := attrcallbacks.NewDispatcher(reg)
	saved := newGadget()
	ctx := context.Background()

	// act
	beforeErr := dispatcher.DispatchBefore(ctx, saved, attrcallbacks.NewChangeEntry("display_name", nil, "Sprocket"))
	tagsBeforeErr := dispatcher.DispatchBefore(ctx, saved, attrcallbacks.NewChangeEntry("tags", []string{"a"}, []string{"a", "b"}))
	afterErr := dispatcher.DispatchAfter(ctx, saved, attrcallbacks.NewChangeEntry("display_name", nil, "Sprocket"))

	// assert
	require.NoError(t, beforeErr)
	require.NoError(t, tagsBeforeErr)
	require.NoError(t, afterErr)
	assert.Equal(t, []string{
		"before_display_name_change(Sprocket)",
		"before_tags_add(b)",
		"display_name_changed(<nil>,Sprocket)",
	}, saved.calls)
}

func Test_RegisterMethods_When_MethodVetoes_Then_SaveIsRejected(t *testing.T) {
	// arrange
	reg := attrcallbacks.NewRegistry()
	require.NoError(t, attrcallbacks.RegisterMethods(reg, newGadget()))

	// act
	err := attrcallbacks.NewDispatcher(reg).
		DispatchBefore(context.Background(), newGadget(), attrcallbacks.NewChangeEntry("display_name", "Sprocket", ""))

	// assert
	assert.ErrorIs(t, err, attrcallbacks.ErrSaveRejected)
}

func Test_RegisterMethods_When_MethodFails_Then_ItsErrorStaysMatchable(t *testing.T) {
	// arrange
	reg := attrcallbacks.NewRegistry()
	require.NoError(t, attrcallbacks.RegisterMethods(reg, newGadget()))

	// act
	err := attrcallbacks.NewDispatcher(reg).
		DispatchAfter(context.Background(), newGadget(), attrcallbacks.NewChangeEntry("tags", []string{"broken"}, []string{}))

	// assert
	assert.ErrorIs(t, err, attrcallbacks.ErrHookFailed)

	var hookErr *attrcallbacks.HookError
	require.ErrorAs(t, err, &hookErr)
	assert.Equal(t, "after_tags_remove", hookErr.Hook)
	assert.EqualError(t, hookErr.Err, "cannot remove broken")
}

func Test_RegisterMethods_When_SignatureIsWrong_Then_ErrInvalidHookSignature(t *testing.T) {
	err := attrcallbacks.RegisterMethods(attrcallbacks.NewRegistry(), &brokenGadget{stubRecord: newStubRecord()})

	assert.ErrorIs(t, err, attrcallbacks.ErrInvalidHookSignature)
	assert.Contains(t, err.Error(), "BeforeNameChange")
}

func Test_RegisterMethods_When_AnotherRecordTypeIsDispatched_Then_ErrRecordTypeMismatch(t *testing.T) {
	// arrange
	reg := attrcallbacks.NewRegistry()
	require.NoError(t, attrcallbacks.RegisterMethods(reg, newGadget()))

	// act
	err := attrcallbacks.NewDispatcher(reg).
		DispatchBefore(context.Background(), newStubRecord(), attrcallbacks.NewChangeEntry("display_name", nil, "x"))

	// assert
	assert.ErrorIs(t, err, attrcallbacks.ErrRecordTypeMismatch)
}

func Test_RegisterMethods_When_RegistryOrSampleIsNil_Then_Error(t *testing.T) {
	assert.ErrorIs(t, attrcallbacks.RegisterMethods(nil, newGadget()), attrcallbacks.ErrNilRegistry)
	assert.ErrorIs(t, attrcallbacks.RegisterMethods(attrcallbacks.NewRegistry(), nil), attrcallbacks.ErrNilRecord)
}
