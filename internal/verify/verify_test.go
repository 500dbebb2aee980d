package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/company-profiler/internal/model"
)

func crawlOf(pairs ...string) *model.CrawlResult {
	r := model.NewCrawlResult()
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Set(pairs[i], pairs[i+1])
	}
	return r
}

func TestConfidence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		count, total int
		want         float64
	}{
		{0, 5, 0},
		{-1, 5, 0},
		{1, 1, 0.5},
		{2, 2, 0.65},
		{3, 1, 0.80},
		{3, 3, 0.85},
		{4, 2, 0.90},
		{10, 10, 0.95},
		{50, 50, 0.95},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Confidence(tt.count, tt.total), 1e-9, "count=%d total=%d", tt.count, tt.total)
	}
}

func TestConfidence_NeverAboveCap(t *testing.T) {
	t.Parallel()

	for c := 0; c <= 20; c++ {
		for total := c; total <= 20; total++ {
			assert.LessOrEqual(t, Confidence(c, total), 0.95)
		}
	}
}

func TestVerify_ExtractedEmailOnTwoPages(t *testing.T) {
	res := crawlOf(
		"https://acme.com", "write to Sales@Acme.com",
		"https://acme.com/contact", "sales@acme.com or jobs@acme.com",
	)
	p := model.Profile{Email: "sales@acme.com, other@x.com", Phone: "+1 555 123 4567"}

	out, rep := Verify(p, res, "https://www.acme.com")
	assert.Equal(t, 2, rep.TotalPages)
	assert.True(t, rep.Email.Verified)
	assert.Equal(t, "sales@acme.com", rep.Email.Value)
	assert.Equal(t, 2, rep.Email.Count)
	assert.InDelta(t, 0.72, rep.Email.Confidence, 1e-9)
	assert.False(t, rep.Phone.Verified)
	assert.Equal(t, "Phone: UNVERIFIED; Email: VERIFIED (AI 0.72)", out.VerificationStatus)
	assert.Equal(t, "sales@acme.com, other@x.com", out.Email)
}

func TestVerify_TopValueFillsEmptyFields(t *testing.T) {
	res := crawlOf(
		"https://acme.com", "info@gmail.com call (555) 123-4567",
		"https://acme.com/a", "info@gmail.com 555.123.4567",
		"https://acme.com/b", "INFO@gmail.com 555 123 4567",
	)

	out, rep := Verify(model.Profile{}, res, "acme.com")
	assert.Equal(t, "info@gmail.com", out.Email)
	assert.Equal(t, "5551234567", out.Phone)
	assert.Equal(t, 3, rep.Email.Count)
	assert.Equal(t, 3, rep.Phone.Count)
	assert.Equal(t, "Phone: VERIFIED (AI 0.85); Email: VERIFIED (AI 0.85)", out.VerificationStatus)
}

func TestVerify_TopValueKeepsExistingField(t *testing.T) {
	res := crawlOf(
		"https://acme.com", "hello@acme.com",
		"https://acme.com/a", "hello@acme.com",
	)
	p := model.Profile{Email: "ceo@acme.com"}

	out, rep := Verify(p, res, "https://acme.com")
	assert.True(t, rep.Email.Verified)
	assert.Equal(t, "hello@acme.com", rep.Email.Value)
	assert.Equal(t, "ceo@acme.com", out.Email)
	assert.Equal(t, "Phone: UNVERIFIED; Email: VERIFIED (AI 0.72)", out.VerificationStatus)
}

func TestVerify_SinglePageNeverVerifies(t *testing.T) {
	res := crawlOf("https://acme.com", "contact@acme.com contact@acme.com contact@acme.com")
	p := model.Profile{Email: "contact@acme.com"}

	out, rep := Verify(p, res, "https://acme.com")
	assert.Equal(t, 1, rep.Email.Count)
	assert.False(t, rep.Email.Verified)
	assert.Equal(t, "Phone: UNVERIFIED; Email: UNVERIFIED", out.VerificationStatus)
}

func TestVerify_TieBreaksOnFirstSeen(t *testing.T) {
	res := crawlOf(
		"https://acme.com", "b@x.com a@x.com",
		"https://acme.com/2", "a@x.com b@x.com",
	)

	out, _ := Verify(model.Profile{}, res, "https://acme.com")
	// FindEmails sorts per page, so a@x.com is seen first.
	assert.Equal(t, "a@x.com", out.Email)
}

func TestVerify_IgnoresSocialEntriesAndNilCrawl(t *testing.T) {
	res := crawlOf("https://acme.com", "a@acme.com")
	res.Mark("https://linkedin.com/company/acme")

	_, rep := Verify(model.Profile{}, res, "https://acme.com")
	assert.Equal(t, 1, rep.TotalPages)

	out, rep := Verify(model.Profile{Email: "a@acme.com"}, nil, "")
	assert.Equal(t, 0, rep.TotalPages)
	assert.Equal(t, "Phone: UNVERIFIED; Email: UNVERIFIED", out.VerificationStatus)
}

func TestDecide_DomainBonusCapped(t *testing.T) {
	t.Parallel()

	tl := newTally()
	for range 4 {
		tl.addPage([]string{"sales@acme.com"}, func(s string) string { return s })
	}
	bonus := func(string) float64 { return domainBonus }

	sig := decide(tl, "sales@acme.com", 2, bonus)
	assert.True(t, sig.Verified)
	assert.InDelta(t, 0.97, sig.Confidence, 1e-9)

	sig = decide(tl, "sales@acme.com", 4, bonus)
	assert.InDelta(t, 0.98, sig.Confidence, 1e-9)
}

func TestNormalizePhone(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "+912240001234", NormalizePhone("+91 22-4000 (1234)"))
	assert.Equal(t, "5551234567", NormalizePhone("(555) 123.4567"))
	assert.Equal(t, "+15551234567", NormalizePhone("(+1) 555-123-4567"))
	assert.Equal(t, "5551234", NormalizePhone("555+1234"))
	assert.Equal(t, "", NormalizePhone("+"))
	assert.Equal(t, "", NormalizePhone(""))
}

func TestSiteDomain(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "acme.com", SiteDomain("https://WWW.acme.com/about"))
	assert.Equal(t, "acme.com", SiteDomain("acme.com"))
	assert.Equal(t, "", SiteDomain(""))
	assert.True(t, domainMatches("a@mail.acme.com", "acme.com"))
	assert.False(t, domainMatches("a@notacme.com", "acme.com"))
}
