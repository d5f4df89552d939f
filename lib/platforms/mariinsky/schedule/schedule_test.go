package schedule

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mariinsky-counter/lib/htmlutil"
	"mariinsky-counter/lib/platforms/mariinsky/core"

	"github.com/stretchr/testify/require"
)

func TestDefaultKeywords(t *testing.T) {
	ballet := DefaultKeywords(core.Ballet)
	require.Equal(t, []string{"Реп.", "Сц. фп.", "Орк. сцен. реп.", "Ген. реп.", "+балет"}, ballet.Rehearsal)
	require.Equal(t, []string{"Явка на грим", "(сверка)", "Урок балета"}, ballet.Skip)

	extras := DefaultKeywords(core.Extras)
	require.Equal(t, []string{"Реп.", "Сц. фп.", "Орк. сцен. реп.", "Ген. реп.", "Тех. работы", "миманс"}, extras.Rehearsal)
	require.Equal(t, []string{"Явка на грим", "(сверка)", "Занятие +миманс"}, extras.Skip)

	// defaults are not shared between calls
	ballet.Rehearsal[0] = "changed"
	require.Equal(t, "Реп.", DefaultKeywords(core.Ballet).Rehearsal[0])
}

func TestClassify(t *testing.T) {
	anchors := []htmlutil.Anchor{
		{Name: "Лебединое озеро", Href: "/Home/MoreInfo/30"},
		{Name: "Жизель", Href: "/Home/MoreInfo/10?a=9"},
		{Name: "Реп. Жизель", Href: "/Home/MoreInfo/20"},
		{Name: "Урок балета", Href: "/Home/MoreInfo/40"},
		{Name: "Реп. Явка на грим", Href: "/Home/MoreInfo/50"},
		{Name: "Репертуар", Href: "/Home/Schedule/60"},
		{Name: "Лебединое озеро", Href: "/Home/MoreInfo/30"},
		{Name: "Ген. реп. Спящая красавица", Href: "/Home/MoreInfo/15"},
		{Name: "no code", Href: "/Home/MoreInfo/"},
	}

	codes := Classify(anchors, DefaultKeywords(core.Ballet))
	require.Equal(t, []string{"10", "30"}, codes.Performances)
	require.Equal(t, []string{"15", "20"}, codes.Rehearsals)
}

func TestClassifyExtras(t *testing.T) {
	anchors := []htmlutil.Anchor{
		{Name: "Занятие +миманс", Href: "/Home/MoreInfo/1"},
		{Name: "миманс", Href: "/Home/MoreInfo/2"},
		{Name: "Тех. работы", Href: "/Home/MoreInfo/3"},
		{Name: "Кармен", Href: "/Home/MoreInfo/4"},
	}

	codes := Classify(anchors, DefaultKeywords(core.Extras))
	require.Equal(t, []string{"4"}, codes.Performances)
	require.Equal(t, []string{"2", "3"}, codes.Rehearsals)
}

const schedulePage = `<html><body>
<a href="/Home/MoreInfo/7">Баядерка</a>
<a href="/Home/MoreInfo/8">Реп. Баядерка</a>
<a>no link</a>
</body></html>`

func TestParseSchedule(t *testing.T) {
	anchors, err := ParseSchedule(context.Background(), strings.NewReader(schedulePage))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, []htmlutil.Anchor{
		{Name: "Баядерка", Href: "/Home/MoreInfo/7"},
		{Name: "Реп. Баядерка", Href: "/Home/MoreInfo/8"},
	}, anchors)
}

func TestFetch(t *testing.T) {
	var form map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Home/Schedule" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		err := r.ParseForm()
		if err != nil {
			t.Fatal(err)
		}
		form = map[string]string{
			"startDate":  r.PostForm.Get("startDate"),
			"finishDate": r.PostForm.Get("finishDate"),
			"dep":        r.PostForm.Get("dep"),
		}
		fmt.Fprint(w, schedulePage)
	}))
	defer server.Close()

	portal, err := core.NewClient(core.ClientOptions{BaseUrl: server.URL})
	if err != nil {
		t.Fatal(err)
	}
	client := Client{Portal: portal, Path: "/Home/Schedule"}

	anchors, err := client.Fetch(context.Background(), core.Extras, "01.04.2023", "30.04.2023")
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, anchors, 2)
	require.Equal(t, map[string]string{
		"startDate":  "01.04.2023",
		"finishDate": "30.04.2023",
		"dep":        "6",
	}, form)

	client.Path = "/missing"
	_, err = client.Fetch(context.Background(), core.Extras, "01.04.2023", "30.04.2023")
	require.Error(t, err)
}
