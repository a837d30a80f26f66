package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

func testCollator() *collate.Collator {
	return collate.New(language.English, collate.IgnoreCase)
}

func post(title string, views int) TopListItem {
	return PostItem{Title: title, PostID: title, MetricSet: SiteMetricSet{MetricViews: views}}
}

func TestSortTopListItems_ValueDescending(t *testing.T) {
	items := []TopListItem{post("a", 5), post("b", 50), post("c", 20)}
	SortTopListItems(items, MetricViews, testCollator())

	assert.Equal(t, "b", items[0].DisplayName())
	assert.Equal(t, "c", items[1].DisplayName())
	assert.Equal(t, "a", items[2].DisplayName())
}

func TestSortTopListItems_NameBreaksValueTies(t *testing.T) {
	items := []TopListItem{post("zebra", 10), post("apple", 10), post("Mango", 10)}
	SortTopListItems(items, MetricViews, testCollator())

	assert.Equal(t, "apple", items[0].DisplayName())
	assert.Equal(t, "Mango", items[1].DisplayName())
	assert.Equal(t, "zebra", items[2].DisplayName())
}

func TestSortTopListItems_AbsentMetricSortsLast(t *testing.T) {
	noMetric := PostItem{Title: "missing", PostID: "missing", MetricSet: SiteMetricSet{}}
	items := []TopListItem{noMetric, post("present", 0)}
	SortTopListItems(items, MetricViews, testCollator())

	assert.Equal(t, "present", items[0].DisplayName())
	assert.Equal(t, "missing", items[1].DisplayName())
}

func TestSortTopListItems_IDBreaksExactTies(t *testing.T) {
	a := PostItem{Title: "same", PostID: "2", MetricSet: SiteMetricSet{MetricViews: 10}}
	b := PostItem{Title: "same", PostID: "1", MetricSet: SiteMetricSet{MetricViews: 10}}
	items := []TopListItem{a, b}
	SortTopListItems(items, MetricViews, testCollator())

	assert.Equal(t, "1", items[0].ItemID())
	assert.Equal(t, "2", items[1].ItemID())
}

func TestSortTopListItems_Deterministic(t *testing.T) {
	build := func() []TopListItem {
		return []TopListItem{
			post("b", 10), post("a", 10), post("c", 30), post("d", 30),
		}
	}
	first := build()
	SortTopListItems(first, MetricViews, testCollator())
	for i := 0; i < 5; i++ {
		next := build()
		SortTopListItems(next, MetricViews, testCollator())
		require.Equal(t, first, next)
	}
}

func TestParseTopListItemType(t *testing.T) {
	for _, item := range AllTopListItemTypes {
		parsed, ok := ParseTopListItemType(string(item))
		require.True(t, ok)
		assert.Equal(t, item, parsed)
	}
	_, ok := ParseTopListItemType("bogus")
	assert.False(t, ok)
}

func TestReferrerItem_IDCombinesDomainAndName(t *testing.T) {
	item := ReferrerItem{Name: "Search", Domain: "example.com"}
	assert.Equal(t, "example.comSearch", item.ItemID())
}

func TestPostItem_IDFallsBackToTitle(t *testing.T) {
	item := PostItem{Title: "Untracked"}
	assert.Equal(t, "Untracked", item.ItemID())
}
