package catalog

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApps() []App {
	return []App{
		{Name: "Adobe Acrobat Reader", Icon: "https://icons/acrobat.png", Roles: []string{"Design", "Other"}, Trigger: "install-Adobe_Acrobat_Reader"},
		{Name: "Docker Desktop", Icon: "https://icons/docker.png", Roles: []string{"Engineering"}, Trigger: "install-Docker"},
		{Name: "Figma", Icon: "https://icons/figma.png", Roles: []string{"Design"}, Trigger: "install-Figma"},
		{Name: "Microsoft Office", Icon: "https://icons/office.png", Roles: []string{"Design", "Engineering", "Other"}, Trigger: "install-Microsoft_Office_Suite", Locked: true},
		{Name: "Xcode", Icon: "https://icons/xcode.png", Roles: []string{"Engineering"}, Trigger: "install-Xcode-14"},
	}
}

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := New(testApps())
	require.NoError(t, err)
	return c
}

func TestNew_DuplicateName(t *testing.T) {
	apps := testApps()
	apps = append(apps, App{Name: "Figma", Trigger: "install-Figma-2"})

	_, err := New(apps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Figma")
}

func TestCheckboxes_FollowRoleEligibility(t *testing.T) {
	c := newTestCatalog(t)

	for _, role := range []string{"Design", "Engineering", "Other", ""} {
		t.Run("role="+role, func(t *testing.T) {
			boxes := c.Checkboxes(role)
			require.Len(t, boxes, len(testApps()))

			for i, app := range testApps() {
				box := boxes[i]
				assert.Equal(t, app.Name, box.Label)

				if app.Locked {
					assert.True(t, box.Checked, "locked app %s must be checked", app.Name)
					assert.True(t, box.Disabled, "locked app %s must be disabled", app.Name)
					continue
				}

				assert.Equal(t, app.EligibleFor(role), box.Checked, "app %s", app.Name)
				assert.False(t, box.Disabled)
			}
		})
	}
}

func TestCheckboxes_LockedWithoutRole(t *testing.T) {
	c, err := New([]App{{Name: "Company Portal", Trigger: "install-portal", Locked: true}})
	require.NoError(t, err)

	boxes := c.Checkboxes("Engineering")
	require.Len(t, boxes, 1)
	assert.True(t, boxes[0].Checked)
	assert.True(t, boxes[0].Disabled)
}

func TestBuildSelectedLists_SortedAndIndexed(t *testing.T) {
	c := newTestCatalog(t)

	rows, items, err := c.BuildSelectedLists([]string{"Xcode", "Figma"})
	require.NoError(t, err)

	assert.Equal(t, []Row{
		{Title: "Figma", Icon: "https://icons/figma.png"},
		{Title: "Xcode", Icon: "https://icons/xcode.png"},
	}, rows)
	assert.Equal(t, []WorkItem{
		{Index: 0, Name: "Figma", Trigger: "install-Figma"},
		{Index: 1, Name: "Xcode", Trigger: "install-Xcode-14"},
	}, items)
}

func TestBuildSelectedLists_OrderIndependent(t *testing.T) {
	c := newTestCatalog(t)
	names := []string{"Xcode", "Microsoft Office", "Docker Desktop", "Figma", "Adobe Acrobat Reader"}

	wantRows, wantItems, err := c.BuildSelectedLists(names)
	require.NoError(t, err)

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]string(nil), names...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		rows, items, err := c.BuildSelectedLists(shuffled)
		require.NoError(t, err)
		assert.Equal(t, wantRows, rows)
		assert.Equal(t, wantItems, items)
	}

	for i, item := range wantItems {
		assert.Equal(t, i, item.Index)
		assert.Equal(t, wantRows[i].Title, item.Name)
	}
}

func TestBuildSelectedLists_Idempotent(t *testing.T) {
	c := newTestCatalog(t)

	_, first, err := c.BuildSelectedLists([]string{"Figma", "Docker Desktop"})
	require.NoError(t, err)

	names := make([]string, 0, len(first))
	for _, it := range first {
		names = append(names, it.Name)
	}

	_, second, err := c.BuildSelectedLists(names)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildSelectedLists_Duplicates(t *testing.T) {
	c := newTestCatalog(t)

	_, items, err := c.BuildSelectedLists([]string{"Figma", "Figma"})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestBuildSelectedLists_Unknown(t *testing.T) {
	c := newTestCatalog(t)

	_, _, err := c.BuildSelectedLists([]string{"Figma", "Sketch"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Sketch")
}

func TestBuildSelectedLists_Empty(t *testing.T) {
	c := newTestCatalog(t)

	rows, items, err := c.BuildSelectedLists(nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Empty(t, items)
}
