package book

import (
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
)

var dialect = goqu.Dialect("postgres")

var bookColumns = []any{
	goqu.I("b.id"),
	goqu.I("b.title"),
	goqu.I("b.author"),
	goqu.I("b.isbn"),
	goqu.I("b.genre"),
	goqu.I("b.publisher"),
	goqu.I("b.published_year"),
	goqu.I("b.page_count"),
	goqu.I("b.language"),
	goqu.I("b.description"),
	goqu.I("b.cover_image"),
	goqu.I("b.total_copies"),
	goqu.I("b.available_copies"),
	goqu.I("b.created_at"),
	goqu.I("b.updated_at"),
}

// ratingStats aggregates reviews per book.
func ratingStats() *goqu.SelectDataset {
	return dialect.From("reviews").
		Select(
			goqu.C("book_id"),
			goqu.L("AVG(rating)::float8").As("avg_rating"),
			goqu.COUNT(goqu.Star()).As("review_count"),
		).
		GroupBy("book_id")
}

// likePattern wraps s for a contains match, escaping LIKE metacharacters.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func filters(q Query) []exp.Expression {
	var where []exp.Expression
	if s := strings.TrimSpace(q.Q); s != "" {
		p := likePattern(s)
		where = append(where, goqu.Or(
			goqu.I("b.title").ILike(p),
			goqu.I("b.author").ILike(p),
			goqu.I("b.isbn").ILike(p),
			goqu.I("b.genre").ILike(p),
		))
	}
	if s := strings.TrimSpace(q.Title); s != "" {
		where = append(where, goqu.I("b.title").ILike(likePattern(s)))
	}
	if s := strings.TrimSpace(q.Author); s != "" {
		where = append(where, goqu.I("b.author").ILike(likePattern(s)))
	}
	if s := strings.TrimSpace(q.Genre); s != "" {
		where = append(where, goqu.Func("LOWER", goqu.I("b.genre")).Eq(strings.ToLower(s)))
	}
	if s := strings.TrimSpace(q.GenreContains); s != "" {
		where = append(where, goqu.I("b.genre").ILike(likePattern(s)))
	}
	if q.AvailableOnly {
		where = append(where, goqu.I("b.available_copies").Gt(0))
	}
	return where
}

func orderBy(q Query) []exp.OrderedExpression {
	var primary exp.Orderable
	switch q.Sort {
	case SortTitle:
		primary = goqu.I("b.title")
	case SortAuthor:
		primary = goqu.I("b.author")
	case SortPublishedYear:
		primary = goqu.I("b.published_year")
	case SortRating:
		primary = goqu.L("COALESCE(r.avg_rating, 0)")
	default:
		primary = goqu.I("b.created_at")
	}
	if q.Desc {
		return []exp.OrderedExpression{primary.Desc().NullsLast(), goqu.I("b.id").Asc()}
	}
	return []exp.OrderedExpression{primary.Asc().NullsLast(), goqu.I("b.id").Asc()}
}

// listSQL builds the page query and its count query. q must be normalized.
func listSQL(q Query) (string, []any, string, []any, error) {
	where := filters(q)

	cols := append([]any{}, bookColumns...)
	cols = append(cols, goqu.I("r.avg_rating"), goqu.COALESCE(goqu.I("r.review_count"), 0).As("review_count"))

	page := dialect.From(goqu.T("books").As("b")).
		LeftJoin(ratingStats().As("r"), goqu.On(goqu.I("r.book_id").Eq(goqu.I("b.id")))).
		Select(cols...).
		Where(where...).
		Order(orderBy(q)...).
		Limit(uint(q.Limit)).
		Offset(uint(q.offset())).
		Prepared(true)

	pageSQL, pageArgs, err := page.ToSQL()
	if err != nil {
		return "", nil, "", nil, err
	}

	count := dialect.From(goqu.T("books").As("b")).
		Select(goqu.COUNT(goqu.Star())).
		Where(where...).
		Prepared(true)

	countSQL, countArgs, err := count.ToSQL()
	if err != nil {
		return "", nil, "", nil, err
	}
	return pageSQL, pageArgs, countSQL, countArgs, nil
}
