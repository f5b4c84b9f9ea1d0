package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/westhuggin/prca-standings-scraper/pkg/extractor"
	"github.com/westhuggin/prca-standings-scraper/pkg/models"
)

type fakeSession struct {
	state       []string
	stateErr    error
	html        string
	docErr      error
	navErr      error
	navPanic    any
	screenshot  []byte
	navigatedTo string
	closed      int
}

func (s *fakeSession) Navigate(_ context.Context, url string) error {
	s.navigatedTo = url
	if s.navPanic != nil {
		panic(s.navPanic)
	}
	return s.navErr
}

func (s *fakeSession) EmbeddedState(context.Context) ([]string, error) { return s.state, s.stateErr }
func (s *fakeSession) HTML(context.Context) (string, error)            { return s.html, nil }
func (s *fakeSession) Responses() []extractor.CapturedResponse         { return nil }
func (s *fakeSession) Screenshot(context.Context) ([]byte, error)      { return s.screenshot, nil }
func (s *fakeSession) Close()                                          { s.closed++ }

func (s *fakeSession) Document(context.Context) (*goquery.Document, error) {
	if s.docErr != nil {
		return nil, s.docErr
	}
	return goquery.NewDocumentFromReader(strings.NewReader(s.html))
}

type fakeDumper struct {
	mu    sync.Mutex
	dumps map[string]string
	err   error
}

func (d *fakeDumper) Dump(code, html string, png []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	if d.dumps == nil {
		d.dumps = map[string]string{}
	}
	d.dumps[code] = html
	return nil
}

// opener hands out prepared sessions in order and remembers them.
type opener struct {
	sessions []*fakeSession
	errs     []error
	opened   int
}

func (o *opener) open(context.Context) (Session, error) {
	i := o.opened
	o.opened++
	if i < len(o.errs) && o.errs[i] != nil {
		return nil, o.errs[i]
	}
	return o.sessions[i], nil
}

func stateFor(name string, earnings int) string {
	return fmt.Sprintf(`{"props":{"standings":[{"athleteName":%q,"rank":"1","totalEarnings":"$%d"}]}}`, name, earnings)
}

func TestRunner_SingleEventEmbeddedState(t *testing.T) {
	sess := &fakeSession{state: []string{`{"standings":[{"athleteName":"Jane Doe","rank":"1","totalEarnings":"$12,345.00"}]}`}}
	o := &opener{sessions: []*fakeSession{sess}}
	r := New(o.open, extractor.NewDefaultChain(extractor.DefaultMinRows))

	results := r.Run(context.Background(), []models.Event{models.EventBareback}, 2025)

	require.Len(t, results, 1)
	res := results[0]
	require.NoError(t, res.Err)
	assert.True(t, res.OK())
	assert.Equal(t, extractor.StateEmbeddedJSON, res.Strategy)

	url := "https://www.prorodeo.com/standings?eventType=BB&standingType=world&year=2025"
	assert.Equal(t, url, res.URL)
	assert.Equal(t, url, sess.navigatedTo)
	one := 1
	assert.Equal(t, []models.Standing{{
		Season:         2025,
		EventCode:      "BB",
		Placing:        &one,
		ContestantName: "Jane Doe",
		Earnings:       12345,
		SourceURL:      url,
	}}, res.Records)
	assert.Equal(t, 1, sess.closed)
}

func TestRunner_AllEventsKeepEnumerationOrder(t *testing.T) {
	events, err := models.ParseEvents(models.AllEvents)
	require.NoError(t, err)

	o := &opener{}
	for i, ev := range events {
		o.sessions = append(o.sessions, &fakeSession{state: []string{stateFor("Rider "+string(ev), 1000+i)}})
	}
	r := New(o.open, extractor.NewDefaultChain(extractor.DefaultMinRows), WithBaseURL("https://example.test"))

	results := r.Run(context.Background(), events, 2024)
	require.Len(t, results, len(models.Events))

	records := Records(results)
	require.Len(t, records, len(models.Events))
	for i, ev := range models.Events {
		assert.Equal(t, string(ev), records[i].EventCode)
		assert.Equal(t, "Rider "+string(ev), records[i].ContestantName)
		assert.Equal(t, 2024, records[i].Season)
		assert.Contains(t, records[i].SourceURL, "https://example.test/standings?eventType="+string(ev))
	}
	for _, s := range o.sessions {
		assert.Equal(t, 1, s.closed)
	}
}

func TestRunner_EverythingTimesOut(t *testing.T) {
	sess := &fakeSession{
		navErr:     context.DeadlineExceeded,
		stateErr:   context.DeadlineExceeded,
		docErr:     context.DeadlineExceeded,
		html:       "<html><body>loading</body></html>",
		screenshot: []byte("png"),
	}
	o := &opener{sessions: []*fakeSession{sess}}
	d := &fakeDumper{}
	r := New(o.open, extractor.NewDefaultChain(extractor.DefaultMinRows), WithDumper(d))

	results := r.Run(context.Background(), []models.Event{models.EventSaddleBronc}, 2025)

	require.Len(t, results, 1)
	res := results[0]
	assert.ErrorIs(t, res.Err, ErrNoData)
	assert.Equal(t, extractor.StateExhausted, res.Strategy)
	assert.Len(t, res.Attempts, 3)
	assert.True(t, res.Dumped)
	assert.Equal(t, "<html><body>loading</body></html>", d.dumps["SB"])
	assert.Equal(t, 1, sess.closed)

	records := Records(results)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestRunner_FailureDoesNotStopLaterEvents(t *testing.T) {
	good := &fakeSession{state: []string{stateFor("Sam Roper", 800)}}
	o := &opener{
		sessions: []*fakeSession{nil, good},
		errs:     []error{errors.New("chrome not found"), nil},
	}
	d := &fakeDumper{}
	r := New(o.open, extractor.NewDefaultChain(extractor.DefaultMinRows), WithDumper(d))

	results := r.Run(context.Background(), []models.Event{models.EventBullRiding, models.EventTieDown}, 2025)

	require.Len(t, results, 2)
	assert.ErrorIs(t, results[0].Err, ErrOpenSession)
	assert.False(t, results[0].Dumped)
	assert.True(t, results[1].OK())
	assert.Equal(t, "Sam Roper", results[1].Records[0].ContestantName)
	assert.Empty(t, d.dumps)
}

func TestRunner_PanicIsContained(t *testing.T) {
	bad := &fakeSession{navPanic: "boom", html: "<html></html>"}
	good := &fakeSession{state: []string{stateFor("Kay Heeler", 500)}}
	o := &opener{sessions: []*fakeSession{bad, good}}
	d := &fakeDumper{}
	r := New(o.open, extractor.NewDefaultChain(extractor.DefaultMinRows), WithDumper(d))

	results := r.Run(context.Background(), []models.Event{models.EventTeamHeader, models.EventTeamHeeler}, 2025)

	require.Len(t, results, 2)
	assert.ErrorIs(t, results[0].Err, ErrCategoryPanic)
	assert.Empty(t, results[0].Records)
	assert.True(t, results[0].Dumped)
	assert.Equal(t, 1, bad.closed)
	assert.True(t, results[1].OK())
}

func TestRunner_DumpFailureIsBestEffort(t *testing.T) {
	sess := &fakeSession{html: "<html></html>"}
	o := &opener{sessions: []*fakeSession{sess}}
	r := New(o.open, extractor.NewDefaultChain(extractor.DefaultMinRows), WithDumper(&fakeDumper{err: errors.New("disk full")}))

	results := r.Run(context.Background(), []models.Event{models.EventLadyBreakaway}, 2025)

	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, ErrNoData)
	assert.False(t, results[0].Dumped)
	assert.Equal(t, 1, sess.closed)
}

func TestRunner_NoDumperConfigured(t *testing.T) {
	sess := &fakeSession{html: "<html></html>"}
	o := &opener{sessions: []*fakeSession{sess}}
	r := New(o.open, extractor.NewDefaultChain(extractor.DefaultMinRows), WithInterval(0))

	results := r.Run(context.Background(), []models.Event{models.EventSteerWrestle}, 2025)

	require.Len(t, results, 1)
	assert.False(t, results[0].Dumped)
}

// boundSession stops answering once the context it was opened with ends,
// the way a browser process dies with its allocator context.
type boundSession struct {
	fakeSession
	openCtx context.Context
}

func (s *boundSession) Navigate(ctx context.Context, url string) error {
	s.navigatedTo = url
	<-ctx.Done()
	return ctx.Err()
}

func (s *boundSession) HTML(ctx context.Context) (string, error) {
	if err := s.openCtx.Err(); err != nil {
		return "", err
	}
	return s.html, nil
}

func (s *boundSession) Screenshot(ctx context.Context) ([]byte, error) {
	if err := s.openCtx.Err(); err != nil {
		return nil, err
	}
	return s.screenshot, nil
}

func TestRunner_PageTimeoutStillDumps(t *testing.T) {
	var sess *boundSession
	open := func(ctx context.Context) (Session, error) {
		sess = &boundSession{
			fakeSession: fakeSession{html: "<html><body>spinner</body></html>", screenshot: []byte("png")},
			openCtx:     ctx,
		}
		return sess, nil
	}
	d := &fakeDumper{}
	r := New(open, extractor.NewDefaultChain(extractor.DefaultMinRows),
		WithPageTimeout(50*time.Millisecond),
		WithDumper(d),
	)

	results := r.Run(context.Background(), []models.Event{models.EventBareback}, 2025)

	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, ErrNoData)
	assert.True(t, results[0].Dumped)
	assert.Equal(t, "<html><body>spinner</body></html>", d.dumps["BB"])
	assert.Equal(t, 1, sess.closed)
}

func TestRecords_Empty(t *testing.T) {
	assert.NotNil(t, Records(nil))
	assert.Empty(t, Records(nil))
}
