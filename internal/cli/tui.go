package cli

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/phylomovie/phylomovie/pkg/morph"
	"github.com/phylomovie/phylomovie/pkg/msa"
	"github.com/phylomovie/phylomovie/pkg/pipeline"
	"github.com/phylomovie/phylomovie/pkg/player"
	"github.com/phylomovie/phylomovie/pkg/settings"
	"github.com/phylomovie/phylomovie/pkg/tree"
)

// tickMsg drives the playback clock.
type tickMsg time.Time

// playModel is the bubbletea model for terminal playback.
type playModel struct {
	runner   *pipeline.Runner
	timeline *player.Timeline
	resolver *player.Resolver
	mapper   *msa.Mapper
	prefs    *settings.Store
	logger   *log.Logger

	fps      int
	width    int
	err      error
	quitting bool

	// steppedBack records that the current position was reached by a
	// backward step, so an anchor tree is attributed to the end of the
	// previous pair when its alignment window is resolved.
	steppedBack bool
}

func newPlayModel(runner *pipeline.Runner, timeline *player.Timeline, prefs *settings.Store, fps int, logger *log.Logger) playModel {
	if fps <= 0 {
		fps = 30
	}
	data := runner.Movie()
	return playModel{
		runner:   runner,
		timeline: timeline,
		resolver: player.NewResolver(data.FullTreeIndices(), data.TreeCount()),
		mapper:   msa.NewMapper(data.WindowSize, data.WindowStepSize, data.AlignmentLength(), logger),
		prefs:    prefs,
		logger:   logger,
		fps:      fps,
		width:    80,
	}
}

func (m playModel) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m playModel) Init() tea.Cmd {
	m.timeline.Play(time.Now())
	return m.tick()
}

func (m playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.quitting {
			return m, nil
		}
		return m, m.tick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m playModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	now := time.Now()
	key := msg.String()

	switch key {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case " ":
		m.steppedBack = false
		if m.timeline.Playing() {
			m.timeline.Pause(now)
		} else {
			if m.timeline.Progress(now) >= 1 {
				m.timeline.Seek(0, now)
			}
			m.timeline.Resume(now)
		}

	case "left":
		m.steppedBack = true
		m.seekToTree(m.currentTreeIndex(now)-1, now)
	case "right":
		m.steppedBack = false
		m.seekToTree(m.currentTreeIndex(now)+1, now)

	case "p":
		m.steppedBack = true
		m.seekToAnchor(-1, now)
	case "n":
		m.steppedBack = false
		m.seekToAnchor(+1, now)

	case "+", "=":
		m.adjustSpeed(2, now)
	case "-", "_":
		m.adjustSpeed(0.5, now)

	case "t":
		m.cycleTransform()

	default:
		if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
			m.steppedBack = false
			m.timeline.Seek(float64(key[0]-'0')/10, now)
		}
	}
	return m, nil
}

// currentTreeIndex returns the nearest tree at the current progress.
// Pauses hold the finished segment's target, so a position inside a
// pause belongs to that target tree.
func (m playModel) currentTreeIndex(now time.Time) int {
	if m.runner.TreeCount() < 2 {
		return 0
	}
	seg, localT, _ := m.timeline.ProgressToSegment(m.timeline.Progress(now))
	return seg + int(math.Round(localT))
}

func (m *playModel) seekToTree(i int, now time.Time) {
	n := m.runner.TreeCount()
	if n < 2 {
		return
	}
	if i < 0 {
		i = 0
	}
	if i > n-1 {
		i = n - 1
	}
	// Tree i sits at the start of segment i; SegmentProgress accounts
	// for the pauses between segments.
	m.timeline.Seek(m.timeline.SegmentProgress(i, 0), now)
}

// seekToAnchor jumps to the nearest full tree in the given direction.
func (m *playModel) seekToAnchor(dir int, now time.Time) {
	anchors := m.resolver.Anchors()
	if len(anchors) == 0 {
		return
	}
	current := m.currentTreeIndex(now)
	if dir > 0 {
		for _, a := range anchors {
			if a > current {
				m.seekToTree(a, now)
				return
			}
		}
		m.seekToTree(anchors[len(anchors)-1], now)
		return
	}
	for i := len(anchors) - 1; i >= 0; i-- {
		if anchors[i] < current {
			m.seekToTree(anchors[i], now)
			return
		}
	}
	m.seekToTree(anchors[0], now)
}

func (m *playModel) adjustSpeed(factor float64, now time.Time) {
	s := m.timeline.Speed() * factor
	if s < 0.125 {
		s = 0.125
	}
	if s > 16 {
		s = 16
	}
	if err := m.timeline.SetSpeed(s, now); err != nil {
		m.err = err
	}
}

// cycleTransform switches the branch transformation none→log→sqrt and
// persists the choice when a settings store is available.
func (m *playModel) cycleTransform() {
	a := m.runner.Appearance()
	switch a.BranchTransformation {
	case tree.TransformNone:
		a.BranchTransformation = tree.TransformLog
	case tree.TransformLog:
		a.BranchTransformation = tree.TransformSqrt
	default:
		a.BranchTransformation = tree.TransformNone
	}
	if err := m.runner.SetAppearance(a); err != nil {
		m.err = err
		return
	}
	if m.prefs != nil {
		if err := m.prefs.SetAppearance(a); err != nil {
			m.logger.Debug("persisting appearance", "err", err)
		}
	}
}

func (m playModel) View() string {
	if m.quitting {
		return ""
	}

	now := time.Now()
	data := m.runner.Movie()
	n := m.runner.TreeCount()
	progress := m.timeline.Progress(now)
	seg, localT, inPause := m.timeline.ProgressToSegment(progress)

	var b strings.Builder
	b.WriteString(StyleTitle.Render(data.Name()))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d trees, %d full", n, m.resolver.AnchorCount())))
	b.WriteString("\n\n")

	barWidth := m.width - 10
	if barWidth > 60 {
		barWidth = 60
	}
	b.WriteString(fmt.Sprintf("  %s %5.1f%%\n\n", progressBar(progress, barWidth), progress*100))

	state := "paused"
	if m.timeline.Playing() {
		state = "playing"
	}
	if m.timeline.IsInPauseSegment(now) {
		state += " (hold)"
	}
	b.WriteString("  " + StyleValue.Render(state))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  ×%g  transform=%s\n", m.timeline.Speed(), transformName(m.runner.Appearance().BranchTransformation))))

	if n < 2 || inPause || localT <= 0 || localT >= 1 {
		// On a tree, or inside a pause holding the segment's target.
		b.WriteString(fmt.Sprintf("  tree %s of %d\n",
			StyleHighlight.Render(fmt.Sprintf("%d", seg+int(math.Round(localT))+1)), n))
	} else {
		stage := m.stageOf(seg, seg+1)
		b.WriteString(fmt.Sprintf("  transition %s %s %s  t=%.2f  %s\n",
			StyleHighlight.Render(fmt.Sprintf("%d", seg+1)),
			StyleDim.Render(iconArrow),
			StyleHighlight.Render(fmt.Sprintf("%d", seg+2)),
			localT,
			StyleDim.Render(string(stage))))
	}

	pos := m.resolver.Resolve(m.currentTreeIndex(now), !m.steppedBack)
	window := m.mapper.WindowFor(pos.PairIndex)
	b.WriteString(StyleDim.Render(fmt.Sprintf("  alignment window %d–%d (mid %d)\n", window.Start, window.End, window.Mid)))

	if m.err != nil {
		b.WriteString("\n  " + StyleWarning.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(StyleDim.Render("  space play/pause · ←/→ tree · p/n full tree · 0-9 seek · +/- speed · t transform · q quit"))
	b.WriteString("\n")
	return b.String()
}

// stageOf classifies the active transition from the cached layouts.
func (m playModel) stageOf(from, to int) morph.Stage {
	ctx := context.Background()
	a, err := m.runner.LayerData(ctx, from)
	if err != nil {
		return morph.StageReorder
	}
	b, err := m.runner.LayerData(ctx, to)
	if err != nil {
		return morph.StageReorder
	}
	return morph.DetectStage(a, b)
}

func transformName(t tree.Transform) string {
	if t == "" {
		return string(tree.TransformNone)
	}
	return string(t)
}
