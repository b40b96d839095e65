package tranco

// RanksResponse is the rank history of one domain across recent daily lists.
type RanksResponse struct {
	Ranks []DomainRank `json:"ranks"`
}

// DomainRank is a single (date, rank) observation.
type DomainRank struct {
	Date string `json:"date"`
	Rank uint64 `json:"rank"`
}

// ListsResponse describes one generated list. It is produced by List or
// ListDate and handed back to DownloadList/OpenList.
type ListsResponse struct {
	ListID        string        `json:"list_id"`
	Available     bool          `json:"available"`
	Download      string        `json:"download"`
	CreatedOn     string        `json:"created_on"`
	Configuration Configuration `json:"configuration"`
	Failed        bool          `json:"failed"`
	JobsAhead     *int64        `json:"jobs_ahead,omitempty"`
}

// Ready reports whether the list can be downloaded.
func (l ListsResponse) Ready() bool {
	return l.Available && !l.Failed && l.Download != ""
}

// RankedDomain is one line of a downloaded list.
type RankedDomain struct {
	Rank   uint64 `json:"rank"`
	Domain string `json:"domain"`
}
