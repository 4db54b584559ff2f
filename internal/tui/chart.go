package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/togoal/internal/goal"
	"github.com/sadopc/togoal/internal/period"
	"github.com/sadopc/togoal/internal/tracker"
)

// chartModel renders recorded hours against goals as a bar per project.
type chartModel struct {
	service *tracker.Service
	width   int
	height  int

	periodType string
	rng        period.Range
	rows       []goal.Row

	chart barchart.Model
}

func newChartModel(svc *tracker.Service) chartModel {
	return chartModel{
		service: svc,
		chart:   barchart.New(60, 12),
	}
}

func (c *chartModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

func (c chartModel) refresh() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		cust, err := c.service.Store().LoadCustomizations(ctx)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load error: %v", err), isError: true}
		}
		rng, _ := c.service.PeriodRange(ctx, time.Now(), cust)
		rows, err := c.service.Rows(ctx, cust)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load error: %v", err), isError: true}
		}
		return statusDataMsg{cust: cust, rng: rng, rows: rows}
	}
}

func (c chartModel) update(msg tea.Msg) (chartModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statusDataMsg:
		c.periodType = msg.cust.TrackingPeriodType
		c.rng = msg.rng
		c.rows = msg.rows
		c.buildChart()
		return c, nil

	case refreshedMsg:
		return c, c.refresh()
	}
	return c, nil
}

func (c *chartModel) buildChart() {
	chartWidth := c.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if c.height > 30 {
		chartHeight = 16
	}

	c.chart = barchart.New(chartWidth, chartHeight)

	recordedStyle := lipgloss.NewStyle().Foreground(colorSecondary)
	remainingStyle := lipgloss.NewStyle().Foreground(colorSubtle)

	var bars []barchart.BarData
	for _, row := range c.rows {
		recorded := row.RecordedTime
		if recorded == goal.NoValue {
			recorded = 0
		}
		values := []barchart.BarValue{
			{Name: "recorded", Value: recorded, Style: recordedStyle},
		}
		if row.RemainingTime > 0 {
			values = append(values, barchart.BarValue{
				Name: "remaining", Value: row.RemainingTime, Style: remainingStyle,
			})
		}
		bars = append(bars, barchart.BarData{
			Label:  shortLabel(row.Project),
			Values: values,
		})
	}

	if len(bars) == 0 {
		bars = []barchart.BarData{{
			Label:  "",
			Values: []barchart.BarValue{{Name: "", Value: 0, Style: remainingStyle}},
		}}
	}

	c.chart.PushAll(bars)
	c.chart.Draw()
}

func shortLabel(name string) string {
	if len(name) > 10 {
		return name[:9] + "…"
	}
	return name
}

func (c chartModel) view() string {
	w := c.width - 4

	dateLabel := mutedStyle.Render(fmt.Sprintf("%s  %s", c.periodType, formatRange(c.rng)))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Chart"), "  ", dateLabel,
	)

	chartView := c.chart.View()
	legend := c.renderLegend()

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", chartView, "", legend),
	)
}

func (c chartModel) renderLegend() string {
	recorded := lipgloss.NewStyle().Foreground(colorSecondary).Render("●") + " recorded"
	remaining := lipgloss.NewStyle().Foreground(colorSubtle).Render("●") + " remaining to goal"
	items := []string{recorded, remaining}
	return "  " + strings.Join(items, "  ")
}
