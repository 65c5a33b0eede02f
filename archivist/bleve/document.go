package bleve

import (
	"strings"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/analysis/lang/en"
	"github.com/blevesearch/bleve/mapping"
	"github.com/blevesearch/bleve/search/query"

	"github.com/bobinette/archivist/archivist"
)

// DocumentIndex indexes document names and tags. It only returns ids,
// access filtering is done by the caller on the stored documents.
type DocumentIndex struct {
	index bleve.Index
}

// Open opens the index at path, creating it if it does not exist.
func (s *DocumentIndex) Open(path string) error {
	index, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		index, err = bleve.New(path, indexMapping())
	}
	if err != nil {
		return err
	}

	s.index = index
	return nil
}

// OpenMem creates an in memory index.
func (s *DocumentIndex) OpenMem() error {
	index, err := bleve.NewMemOnly(indexMapping())
	if err != nil {
		return err
	}

	s.index = index
	return nil
}

func (s *DocumentIndex) Close() error {
	if s.index == nil {
		return nil
	}

	return s.index.Close()
}

func (s *DocumentIndex) Index(doc *archivist.Document) error {
	data := map[string]interface{}{
		"name":            doc.Name,
		"tags":            doc.Tags,
		"departmentId":    doc.DepartmentID,
		"confidentiality": string(doc.Confidentiality),
	}

	return s.index.Index(doc.ID, data)
}

func (s *DocumentIndex) Delete(id string) error {
	return s.index.Delete(id)
}

// Search returns the ids of the documents whose name or tags start with
// every word of q, sorted by id. An empty q matches everything.
func (s *DocumentIndex) Search(q string, limit, offset int) ([]string, error) {
	qs := andQ(
		query.NewMatchAllQuery(),
		s.searchNameOrTags(q),
	)

	searchRequest := bleve.NewSearchRequest(qs)
	searchRequest.SortBy([]string{"_id"})
	if limit > 0 {
		searchRequest.Size = limit
	}
	searchRequest.From = offset

	searchResults, err := s.index.Search(searchRequest)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(searchResults.Hits))
	for i, hit := range searchResults.Hits {
		ids[i] = hit.ID
	}
	return ids, nil
}

func indexMapping() mapping.IndexMapping {
	name := bleve.NewTextFieldMapping()
	name.Analyzer = en.AnalyzerName

	tags := bleve.NewTextFieldMapping()
	tags.Analyzer = simple.Name

	kw := bleve.NewTextFieldMapping()
	kw.Analyzer = keyword.Name

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("name", name)
	doc.AddFieldMappingsAt("tags", tags)
	doc.AddFieldMappingsAt("departmentId", kw)
	doc.AddFieldMappingsAt("confidentiality", kw)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	return m
}

func andQ(qs ...query.Query) query.Query {
	ands := make([]query.Query, 0, len(qs))
	for _, q := range qs {
		if q != nil {
			ands = append(ands, q)
		}
	}

	if len(ands) == 0 {
		return nil
	}
	return query.NewConjunctionQuery(ands)
}

func orQ(qs ...query.Query) query.Query {
	ors := make([]query.Query, 0, len(qs))
	for _, q := range qs {
		if q != nil {
			ors = append(ors, q)
		}
	}

	if len(ors) == 0 {
		return nil
	}
	return query.NewDisjunctionQuery(ors)
}

func (s *DocumentIndex) searchNameOrTags(queryString string) query.Query {
	words := strings.Fields(queryString)
	if len(words) == 0 {
		return nil
	}

	ands := make([]query.Query, 0, len(words))
	for _, word := range words {
		q := orQ(
			s.prefixQuery(word, "name", en.AnalyzerName),
			s.prefixQuery(word, "tags", simple.Name),
		)
		if q != nil {
			ands = append(ands, q)
		}
	}

	return andQ(ands...)
}

func (s *DocumentIndex) prefixQuery(word, field, analyzerName string) query.Query {
	analyzer := s.index.Mapping().AnalyzerNamed(analyzerName)
	tokens := analyzer.Analyze([]byte(word))
	if len(tokens) == 0 {
		return nil
	}

	conjuncs := make([]query.Query, len(tokens))
	for i, token := range tokens {
		conjuncs[i] = &query.PrefixQuery{
			Prefix:   string(token.Term),
			FieldVal: field,
		}
	}

	return query.NewConjunctionQuery(conjuncs)
}
