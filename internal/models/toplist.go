package models

import (
	"sort"

	"golang.org/x/text/collate"
)

// TopListItemType enumerates the fixed set of "top N" item categories.
type TopListItemType string

const (
	ItemPostsAndPages TopListItemType = "postsAndPages"
	ItemAuthors       TopListItemType = "authors"
	ItemReferrers     TopListItemType = "referrers"
	ItemLocations     TopListItemType = "locations"
	ItemDevices       TopListItemType = "devices"
	ItemExternalLinks TopListItemType = "externalLinks"
	ItemFileDownloads TopListItemType = "fileDownloads"
	ItemSearchTerms   TopListItemType = "searchTerms"
	ItemVideos        TopListItemType = "videos"
	ItemArchive       TopListItemType = "archive"
	ItemUTM           TopListItemType = "utm"
)

var AllTopListItemTypes = []TopListItemType{
	ItemPostsAndPages, ItemAuthors, ItemReferrers, ItemLocations,
	ItemDevices, ItemExternalLinks, ItemFileDownloads, ItemSearchTerms,
	ItemVideos, ItemArchive, ItemUTM,
}

func ParseTopListItemType(s string) (TopListItemType, bool) {
	for _, t := range AllTopListItemTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// LocationLevel selects the grouping of the locations category.
type LocationLevel string

const (
	LocationCountries LocationLevel = "countries"
	LocationRegions   LocationLevel = "regions"
	LocationCities    LocationLevel = "cities"
)

// UTMGrouping selects which UTM parameter top lists are grouped by.
type UTMGrouping string

const (
	UTMSource         UTMGrouping = "utm_source"
	UTMMedium         UTMGrouping = "utm_medium"
	UTMCampaign       UTMGrouping = "utm_campaign"
	UTMSourceCampaign UTMGrouping = "utm_source_campaign"
)

// TopListOptions carries the category-specific refinements of a top
// list request. Zero values select the category defaults.
type TopListOptions struct {
	LocationLevel LocationLevel `json:"locationLevel,omitempty"`
	UTMGrouping   UTMGrouping   `json:"utmGrouping,omitempty"`
}

// TopListItem is the closed set of ranked item variants. Every variant
// exposes the common projection used by the ranker; category-specific
// fields live on the concrete structs. Items are constructed fresh per
// response and never mutated.
type TopListItem interface {
	Type() TopListItemType
	ItemID() string
	DisplayName() string
	Metrics() SiteMetricSet
}

// TopListResponse is one fetched and ranked top list.
type TopListResponse struct {
	Items []TopListItem `json:"items"`
}

type PostItem struct {
	Title     string        `json:"title"`
	PostID    string        `json:"postId,omitempty"`
	PostURL   string        `json:"postUrl,omitempty"`
	Author    string        `json:"author,omitempty"`
	MetricSet SiteMetricSet `json:"metrics"`
}

func (p PostItem) Type() TopListItemType { return ItemPostsAndPages }
func (p PostItem) ItemID() string {
	if p.PostID != "" {
		return p.PostID
	}
	return p.Title
}
func (p PostItem) DisplayName() string    { return p.Title }
func (p PostItem) Metrics() SiteMetricSet { return p.MetricSet }

type AuthorItem struct {
	Name      string        `json:"name"`
	UserID    string        `json:"userId"`
	AvatarURL string        `json:"avatarUrl,omitempty"`
	Posts     []PostItem    `json:"posts,omitempty"`
	MetricSet SiteMetricSet `json:"metrics"`
}

func (a AuthorItem) Type() TopListItemType  { return ItemAuthors }
func (a AuthorItem) ItemID() string         { return a.UserID }
func (a AuthorItem) DisplayName() string    { return a.Name }
func (a AuthorItem) Metrics() SiteMetricSet { return a.MetricSet }

type ReferrerItem struct {
	Name      string         `json:"name"`
	Domain    string         `json:"domain,omitempty"`
	IconURL   string         `json:"iconUrl,omitempty"`
	Children  []ReferrerItem `json:"children,omitempty"`
	MetricSet SiteMetricSet  `json:"metrics"`
}

func (r ReferrerItem) Type() TopListItemType  { return ItemReferrers }
func (r ReferrerItem) ItemID() string         { return r.Domain + r.Name }
func (r ReferrerItem) DisplayName() string    { return r.Name }
func (r ReferrerItem) Metrics() SiteMetricSet { return r.MetricSet }

type LocationItem struct {
	Name        string        `json:"name"`
	CountryCode string        `json:"countryCode,omitempty"`
	Level       LocationLevel `json:"level"`
	MetricSet   SiteMetricSet `json:"metrics"`
}

func (l LocationItem) Type() TopListItemType  { return ItemLocations }
func (l LocationItem) ItemID() string         { return l.Name }
func (l LocationItem) DisplayName() string    { return l.Name }
func (l LocationItem) Metrics() SiteMetricSet { return l.MetricSet }

type DeviceItem struct {
	Name      string        `json:"name"`
	MetricSet SiteMetricSet `json:"metrics"`
}

func (d DeviceItem) Type() TopListItemType  { return ItemDevices }
func (d DeviceItem) ItemID() string         { return d.Name }
func (d DeviceItem) DisplayName() string    { return d.Name }
func (d DeviceItem) Metrics() SiteMetricSet { return d.MetricSet }

type ExternalLinkItem struct {
	URL       string             `json:"url"`
	Title     string             `json:"title"`
	Children  []ExternalLinkItem `json:"children,omitempty"`
	MetricSet SiteMetricSet      `json:"metrics"`
}

func (e ExternalLinkItem) Type() TopListItemType  { return ItemExternalLinks }
func (e ExternalLinkItem) ItemID() string         { return e.URL }
func (e ExternalLinkItem) DisplayName() string    { return e.Title }
func (e ExternalLinkItem) Metrics() SiteMetricSet { return e.MetricSet }

type FileDownloadItem struct {
	FileName  string        `json:"fileName"`
	FilePath  string        `json:"filePath"`
	MetricSet SiteMetricSet `json:"metrics"`
}

func (f FileDownloadItem) Type() TopListItemType  { return ItemFileDownloads }
func (f FileDownloadItem) ItemID() string         { return f.FilePath }
func (f FileDownloadItem) DisplayName() string    { return f.FileName }
func (f FileDownloadItem) Metrics() SiteMetricSet { return f.MetricSet }

type SearchTermItem struct {
	Term      string        `json:"term"`
	MetricSet SiteMetricSet `json:"metrics"`
}

func (s SearchTermItem) Type() TopListItemType  { return ItemSearchTerms }
func (s SearchTermItem) ItemID() string         { return s.Term }
func (s SearchTermItem) DisplayName() string    { return s.Term }
func (s SearchTermItem) Metrics() SiteMetricSet { return s.MetricSet }

type VideoItem struct {
	Title     string        `json:"title"`
	PostID    string        `json:"postId"`
	VideoURL  string        `json:"videoUrl,omitempty"`
	MetricSet SiteMetricSet `json:"metrics"`
}

func (v VideoItem) Type() TopListItemType  { return ItemVideos }
func (v VideoItem) ItemID() string         { return v.PostID }
func (v VideoItem) DisplayName() string    { return v.Title }
func (v VideoItem) Metrics() SiteMetricSet { return v.MetricSet }

type ArchiveEntry struct {
	Href  string `json:"href"`
	Value string `json:"value"`
	Views int    `json:"views"`
}

type ArchiveSectionItem struct {
	SectionName string         `json:"sectionName"`
	Entries     []ArchiveEntry `json:"entries"`
	MetricSet   SiteMetricSet  `json:"metrics"`
}

func (a ArchiveSectionItem) Type() TopListItemType  { return ItemArchive }
func (a ArchiveSectionItem) ItemID() string         { return a.SectionName }
func (a ArchiveSectionItem) DisplayName() string    { return a.SectionName }
func (a ArchiveSectionItem) Metrics() SiteMetricSet { return a.MetricSet }

type UTMItem struct {
	Value     string        `json:"value"`
	Grouping  UTMGrouping   `json:"grouping"`
	MetricSet SiteMetricSet `json:"metrics"`
}

func (u UTMItem) Type() TopListItemType  { return ItemUTM }
func (u UTMItem) ItemID() string         { return u.Value }
func (u UTMItem) DisplayName() string    { return u.Value }
func (u UTMItem) Metrics() SiteMetricSet { return u.MetricSet }

// SortTopListItems applies the uniform three-key order to any category:
// metric value descending with absent values last, display name under
// the collator, then identifier ascending so exact ties break
// reproducibly.
func SortTopListItems(items []TopListItem, metric SiteMetric, coll *collate.Collator) {
	sort.SliceStable(items, func(i, j int) bool {
		lv, lok := items[i].Metrics().Value(metric)
		rv, rok := items[j].Metrics().Value(metric)
		if lok != rok {
			return lok
		}
		if lv != rv {
			return lv > rv
		}
		if c := coll.CompareString(items[i].DisplayName(), items[j].DisplayName()); c != 0 {
			return c < 0
		}
		return items[i].ItemID() < items[j].ItemID()
	})
}
