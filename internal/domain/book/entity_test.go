package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAvailable() *Book {
	return NewBook(1, Details{
		Title: "高等数学", Level: LevelUndergraduate, Standard: "大一", Institute: "同济大学",
		Condition: ConditionGood, Price: 2500,
	}, []string{"https://img.example.com/1.jpg"})
}

func TestBook_StateMachine(t *testing.T) {
	b := newAvailable()
	require.NoError(t, b.CheckInvariant())
	assert.True(t, b.CanTransitionTo(StatusSold))
	assert.False(t, b.CanTransitionTo(StatusAvailable))

	require.NoError(t, b.MarkSold(2))
	assert.Equal(t, StatusSold, b.Status)
	require.NotNil(t, b.PurchaserID)
	assert.Equal(t, uint(2), *b.PurchaserID)
	require.NoError(t, b.CheckInvariant())

	assert.ErrorIs(t, b.MarkSold(3), ErrBookNotAvailable, "已售出的图书不能再次售出")

	b.Revert()
	assert.Equal(t, StatusAvailable, b.Status)
	assert.Nil(t, b.PurchaserID)
	require.NoError(t, b.CheckInvariant())

	// 幂等
	b.Revert()
	assert.Equal(t, StatusAvailable, b.Status)
}

func TestBook_MarkSold_SelfPurchase(t *testing.T) {
	b := newAvailable()
	assert.ErrorIs(t, b.MarkSold(1), ErrSelfPurchase)
	assert.Equal(t, StatusAvailable, b.Status)
	assert.Nil(t, b.PurchaserID)
}

func TestBook_CheckInvariant(t *testing.T) {
	b := newAvailable()
	b.Status = StatusSold
	assert.ErrorIs(t, b.CheckInvariant(), ErrInconsistentState, "已售出但没有购买者")

	seller := b.SellerID
	b.PurchaserID = &seller
	assert.ErrorIs(t, b.CheckInvariant(), ErrInconsistentState, "购买者等于卖家")
}

func TestBook_Clone(t *testing.T) {
	b := newAvailable()
	require.NoError(t, b.MarkSold(2))

	c := b.Clone()
	c.Images[0] = "changed"
	*c.PurchaserID = 9

	assert.Equal(t, "https://img.example.com/1.jpg", b.Images[0])
	assert.Equal(t, uint(2), *b.PurchaserID)
}

func TestValidateForCreate(t *testing.T) {
	valid := newAvailable().Details()
	images := []string{"a.jpg"}

	require.NoError(t, validateForCreate(valid, images))

	cases := map[string]struct {
		mutate func(d *Details)
		images []string
		want   error
	}{
		"价格为0":  {mutate: func(d *Details) { d.Price = 0 }, images: images, want: ErrInvalidPrice},
		"没有图片":   {mutate: func(d *Details) {}, images: nil, want: ErrNoImages},
		"空白图片":   {mutate: func(d *Details) {}, images: []string{" "}, want: ErrNoImages},
		"未知学段":   {mutate: func(d *Details) { d.Level = "Kindergarten" }, images: images, want: ErrInvalidLevel},
		"未知品相":   {mutate: func(d *Details) { d.Condition = "Broken" }, images: images, want: ErrInvalidCondition},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			d := valid
			tc.mutate(&d)
			assert.ErrorIs(t, validateForCreate(d, tc.images), tc.want)
		})
	}

	t.Run("书名空白", func(t *testing.T) {
		d := valid
		d.Title = "   "
		err := validateForCreate(d, images)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "书名不能为空")
	})

	t.Run("描述可以为空", func(t *testing.T) {
		d := valid
		d.Description = ""
		assert.NoError(t, validateForCreate(d, images))
	})
}

func TestValidateForUpdate(t *testing.T) {
	d := newAvailable().Details()
	d.Description = "九成新"

	d.Price = 0
	assert.NoError(t, validateForUpdate(d), "修改时价格可以为0")

	d.Price = -1
	assert.ErrorIs(t, validateForUpdate(d), ErrNegativePrice)

	d.Price = 100
	d.Description = ""
	err := validateForUpdate(d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "描述不能为空")
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "Available", StatusAvailable.String())
	assert.Equal(t, "Sold", StatusSold.String())
	assert.Equal(t, "Unknown", Status(0).String())
}
