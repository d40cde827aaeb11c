package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"hestia/internal/clock"
	apperrors "hestia/internal/errors"
	"hestia/internal/models"
	"hestia/internal/period"
)

// dashboardService assembles the aggregated read models for the dashboard.
type dashboardService struct {
	db     *gorm.DB
	clock  clock.Clock
	alerts AlertServicer
}

// NewDashboardService creates a new DashboardServicer using the wall clock.
func NewDashboardService(db *gorm.DB, alerts AlertServicer) DashboardServicer {
	return &dashboardService{db: db, clock: clock.System{}, alerts: alerts}
}

// NewDashboardServiceWithClock creates a DashboardServicer with an explicit
// time source.
func NewDashboardServiceWithClock(db *gorm.DB, alerts AlertServicer, c clock.Clock) DashboardServicer {
	return &dashboardService{db: db, clock: c, alerts: alerts}
}

// GetSummary assembles the spending picture for a month. Without an explicit
// year/month it covers the current month.
func (s *dashboardService) GetSummary(userID string, year, month *int) (*DashboardSummary, error) {
	ref := s.referenceForMonth(year, month)
	start, end := period.Window(period.Monthly, ref)

	total, err := s.sumUserSpending(userID, start, end)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var limit decimal.NullDecimal
	err = s.db.Model(&models.Budget{}).
		Where("user_id = ? AND period = ?", userID, period.Monthly).
		Select("SUM(limit_amount)").
		Scan(&limit).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	budgetLimit := decimal.Zero
	if limit.Valid {
		budgetLimit = limit.Decimal
	}

	utilization := decimal.Zero
	if budgetLimit.IsPositive() {
		utilization = total.Mul(decimal.NewFromInt(100)).DivRound(budgetLimit, 2)
	}

	topCategories, err := s.categoryBreakdown(userID, period.Monthly, start, end)
	if err != nil {
		return nil, err
	}
	if len(topCategories) > 5 {
		topCategories = topCategories[:5]
	}

	var recent []models.Expense
	err = s.db.
		Preload("Category").
		Preload("SubCategory").
		Where("user_id = ?", userID).
		Where("expense_date >= ? AND expense_date <= ?", start, end).
		Order("expense_date DESC, created_at DESC").
		Limit(5).
		Find(&recent).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	unread, err := s.alerts.GetUnreadAlerts(userID)
	if err != nil {
		return nil, err
	}
	unreadCount := int64(len(unread))
	if len(unread) > 5 {
		unread = unread[:5]
	}

	pending, err := s.PendingObligations(userID, ref)
	if err != nil {
		return nil, err
	}

	return &DashboardSummary{
		TotalSpending:         total,
		BudgetLimit:           budgetLimit,
		UtilizationPercentage: utilization,
		TopCategories:         topCategories,
		RecentExpenses:        recent,
		Alerts:                unread,
		UnreadAlertCount:      unreadCount,
		PendingExpenses:       pending,
	}, nil
}

// GetWeeklyData returns one data point per day of the Monday-start week
// containing the reference date.
func (s *dashboardService) GetWeeklyData(userID string, year, month, day *int) (*ChartData, error) {
	ref := s.clock.Now()
	if year != nil && month != nil && day != nil {
		ref = time.Date(*year, time.Month(*month), *day, 0, 0, 0, 0, time.Local)
	}
	start, end := period.Window(period.Weekly, ref)

	rows, err := s.spendingRows(userID, start, end)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	points := make([]ChartPoint, 7)
	for i := range points {
		points[i] = ChartPoint{Label: start.AddDate(0, 0, i).Weekday().String(), Value: decimal.Zero}
	}
	for _, row := range rows {
		idx := daysBetween(start, row.ExpenseDate)
		if idx >= 0 && idx < 7 {
			points[idx].Value = points[idx].Value.Add(row.Amount)
		}
	}

	return buildChart(points), nil
}

// GetMonthlyData returns one data point per seven-day slice of the month
// containing the reference date.
func (s *dashboardService) GetMonthlyData(userID string, year, month *int) (*ChartData, error) {
	ref := s.referenceForMonth(year, month)
	start, end := period.Window(period.Monthly, ref)

	rows, err := s.spendingRows(userID, start, end)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	weeks := (end.Day() + 6) / 7
	points := make([]ChartPoint, weeks)
	for i := range points {
		points[i] = ChartPoint{Label: fmt.Sprintf("Week %d", i+1), Value: decimal.Zero}
	}
	for _, row := range rows {
		idx := (row.ExpenseDate.Day() - 1) / 7
		if idx >= 0 && idx < weeks {
			points[idx].Value = points[idx].Value.Add(row.Amount)
		}
	}

	return buildChart(points), nil
}

// GetAnnualData returns one data point per month of the reference year. For
// the current year the series stops at the current month.
func (s *dashboardService) GetAnnualData(userID string, year *int) (*ChartData, error) {
	ref := s.clock.Now()
	if year != nil {
		ref = time.Date(*year, time.June, 15, 0, 0, 0, 0, time.Local)
	}
	start, end := period.Window(period.Annual, ref)

	rows, err := s.spendingRows(userID, start, end)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	months := 12
	now := s.clock.Now()
	if ref.Year() == now.Year() {
		months = int(now.Month())
	}

	points := make([]ChartPoint, months)
	for i := range points {
		points[i] = ChartPoint{Label: time.Month(i + 1).String()[:3], Value: decimal.Zero}
	}
	for _, row := range rows {
		idx := int(row.ExpenseDate.Month()) - 1
		if idx >= 0 && idx < months {
			points[idx].Value = points[idx].Value.Add(row.Amount)
		}
	}

	return buildChart(points), nil
}

// GetCategoryBreakdown splits the current period window's spending by
// category, highest spend first.
func (s *dashboardService) GetCategoryBreakdown(userID string, p period.Period) ([]CategorySpending, error) {
	if !p.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "period must be weekly, monthly or annual")
	}
	start, end := period.Window(p, s.clock.Now())
	return s.categoryBreakdown(userID, p, start, end)
}

// PendingObligations projects which mandatory subcategories still lack their
// expected expense in the period containing referenceDate. Monthly categories
// are checked against the calendar month, annual categories against the
// calendar year. One grouped payment query runs per window family regardless
// of how many subcategories the user has.
func (s *dashboardService) PendingObligations(userID string, referenceDate time.Time) ([]PendingObligation, error) {
	type subRow struct {
		ID                  string
		Name                string
		CategoryID          string
		CategoryName        string
		CategoryColor       string
		CategoryExpenseType models.ExpenseType
		BudgetLimit         *decimal.Decimal
		FixedAmount         *decimal.Decimal
		IsMandatory         bool
	}

	var subs []subRow
	err := s.db.Table("sub_categories").
		Select("sub_categories.id, sub_categories.name, sub_categories.category_id, "+
			"categories.name AS category_name, categories.color AS category_color, "+
			"categories.expense_type AS category_expense_type, "+
			"sub_categories.budget_limit, sub_categories.fixed_amount, sub_categories.is_mandatory").
		Joins("JOIN categories ON categories.id = sub_categories.category_id AND categories.is_active = ?", true).
		Where("categories.user_id = ? AND sub_categories.is_active = ?", userID, true).
		Where("(sub_categories.fixed_amount > 0 OR sub_categories.is_mandatory = ?)", true).
		Order("categories.display_order, sub_categories.display_order").
		Scan(&subs).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	byFamily := make(map[models.ExpenseType][]string)
	for _, sub := range subs {
		byFamily[sub.CategoryExpenseType] = append(byFamily[sub.CategoryExpenseType], sub.ID)
	}

	type paymentRow struct {
		SubCategoryID string
		Paid          decimal.Decimal
		Payments      int
		LastDate      time.Time
	}

	payments := make(map[string]paymentRow)
	for family, ids := range byFamily {
		p := period.Monthly
		if family == models.ExpenseTypeAnnual {
			p = period.Annual
		}
		start, end := period.Window(p, referenceDate)

		var rows []paymentRow
		err := s.db.Table("expenses").
			Select("sub_category_id, SUM(amount) AS paid, COUNT(*) AS payments, MAX(expense_date) AS last_date").
			Where("user_id = ? AND sub_category_id IN ?", userID, ids).
			Where("expense_date >= ? AND expense_date <= ?", start, end).
			Group("sub_category_id").
			Scan(&rows).Error
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for _, row := range rows {
			payments[row.SubCategoryID] = row
		}
	}

	obligations := make([]PendingObligation, 0)
	for _, sub := range subs {
		fixed := sub.FixedAmount != nil && sub.FixedAmount.IsPositive()

		expected := decimal.Zero
		switch {
		case fixed:
			expected = *sub.FixedAmount
		case sub.BudgetLimit != nil:
			expected = *sub.BudgetLimit
		}

		payment, hasPayment := payments[sub.ID]

		paid := fixed && payment.Paid.GreaterThanOrEqual(expected)
		if !fixed {
			paid = payment.Paid.IsPositive()
		}
		if paid {
			continue
		}

		obligation := PendingObligation{
			SubCategoryID:       sub.ID,
			SubCategoryName:     sub.Name,
			CategoryID:          sub.CategoryID,
			CategoryName:        sub.CategoryName,
			CategoryColor:       sub.CategoryColor,
			CategoryExpenseType: sub.CategoryExpenseType,
			ExpectedAmount:      expected,
			IsFixed:             fixed,
			IsPaidThisPeriod:    false,
			PaidAmount:          payment.Paid,
			PaymentCount:        payment.Payments,
		}
		if hasPayment && payment.Payments > 0 {
			lastDate := payment.LastDate
			obligation.LastPaidDate = &lastDate
		}
		obligations = append(obligations, obligation)
	}

	return obligations, nil
}

// referenceForMonth picks a date inside the requested month, or now. Mid
// month avoids any edge behavior at the window boundaries.
func (s *dashboardService) referenceForMonth(year, month *int) time.Time {
	if year != nil && month != nil {
		return time.Date(*year, time.Month(*month), 15, 0, 0, 0, 0, time.Local)
	}
	return s.clock.Now()
}

type spendingRow struct {
	Amount      decimal.Decimal
	ExpenseDate time.Time
}

// spendingRows fetches the user's expense amounts and dates within a window,
// excluding soft-deleted categories. Bucketing happens in Go so the query
// stays portable across the production and test databases.
func (s *dashboardService) spendingRows(userID string, start, end time.Time) ([]spendingRow, error) {
	var rows []spendingRow
	err := s.db.Table("expenses").
		Select("expenses.amount, expenses.expense_date").
		Joins("JOIN categories ON categories.id = expenses.category_id AND categories.is_active = ?", true).
		Where("expenses.user_id = ?", userID).
		Where("expenses.expense_date >= ? AND expenses.expense_date <= ?", start, end).
		Scan(&rows).Error
	return rows, err
}

// sumUserSpending totals all of the user's expenses within a window.
func (s *dashboardService) sumUserSpending(userID string, start, end time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := s.db.Model(&models.Expense{}).
		Joins("JOIN categories ON categories.id = expenses.category_id AND categories.is_active = ?", true).
		Where("expenses.user_id = ?", userID).
		Where("expenses.expense_date >= ? AND expenses.expense_date <= ?", start, end).
		Select("SUM(expenses.amount)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// categoryBreakdown groups window spending by category and attaches each
// category's budget limit for the given period.
func (s *dashboardService) categoryBreakdown(userID string, p period.Period, start, end time.Time) ([]CategorySpending, error) {
	type breakdownRow struct {
		CategoryID   string
		CategoryName string
		Icon         string
		Color        string
		Amount       decimal.Decimal
	}

	var rows []breakdownRow
	err := s.db.Table("expenses").
		Select("categories.id AS category_id, categories.name AS category_name, "+
			"categories.icon, categories.color, SUM(expenses.amount) AS amount").
		Joins("JOIN categories ON categories.id = expenses.category_id AND categories.is_active = ?", true).
		Where("expenses.user_id = ?", userID).
		Where("expenses.expense_date >= ? AND expenses.expense_date <= ?", start, end).
		Group("categories.id, categories.name, categories.icon, categories.color").
		Order("amount DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	type limitRow struct {
		CategoryID string
		TotalLimit decimal.Decimal
	}
	var limits []limitRow
	err = s.db.Table("budgets").
		Select("category_id, SUM(limit_amount) AS total_limit").
		Where("user_id = ? AND period = ? AND sub_category_id IS NULL", userID, p).
		Group("category_id").
		Scan(&limits).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	limitByCategory := make(map[string]decimal.Decimal, len(limits))
	for _, row := range limits {
		limitByCategory[row.CategoryID] = row.TotalLimit
	}

	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Amount)
	}

	breakdown := make([]CategorySpending, 0, len(rows))
	for _, row := range rows {
		percentage := decimal.Zero
		if total.IsPositive() {
			percentage = row.Amount.Mul(decimal.NewFromInt(100)).DivRound(total, 2)
		}
		breakdown = append(breakdown, CategorySpending{
			CategoryID:   row.CategoryID,
			CategoryName: row.CategoryName,
			Icon:         row.Icon,
			Color:        row.Color,
			Amount:       row.Amount,
			BudgetLimit:  limitByCategory[row.CategoryID],
			Percentage:   percentage,
		})
	}
	return breakdown, nil
}

// buildChart totals a point series and computes its per-point average.
func buildChart(points []ChartPoint) *ChartData {
	total := decimal.Zero
	for _, p := range points {
		total = total.Add(p.Value)
	}
	average := decimal.Zero
	if len(points) > 0 {
		average = total.DivRound(decimal.NewFromInt(int64(len(points))), 2)
	}
	return &ChartData{DataPoints: points, Total: total, Average: average}
}

// daysBetween returns whole days from a to b, ignoring time of day.
func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, a.Location())
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, b.Location())
	return int(bd.Sub(ad).Hours() / 24)
}
