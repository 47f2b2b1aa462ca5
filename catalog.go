package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"

	"github.com/netcine/web-ui/services/catalog"
	"github.com/netcine/web-ui/services/view"
)

const seedFileFlag = "file"

func makeCatalogCMD() cli.Command {
	catalogCMD := cli.Command{
		Name:    "catalog",
		Aliases: []string{"c"},
		Usage:   "Catalog management commands",
	}
	configureCatalog(&catalogCMD)
	return catalogCMD
}

func configureCatalog(c *cli.Command) {
	seedCmd := cli.Command{
		Name:    "seed",
		Aliases: []string{"s"},
		Usage:   "Loads titles from a json file into the catalog",
		Action:  seedCatalog,
	}
	seedCmd.Flags = append(seedCmd.Flags, cli.StringFlag{
		Name:   seedFileFlag,
		Usage:  "json file with titles",
		Value:  "data/titles.json",
		EnvVar: "CATALOG_SEED_FILE",
	})
	viewsCmd := cli.Command{
		Name:    "views",
		Aliases: []string{"v"},
		Usage:   "Prints the rows of the catalog page",
		Action:  printCatalogViews,
	}
	c.Subcommands = []cli.Command{seedCmd, viewsCmd}
	for k := range c.Subcommands {
		configureSubCatalog(&c.Subcommands[k])
	}
}

func configureSubCatalog(c *cli.Command) {
	c.Flags = cs.RegisterPGFlags(c.Flags)
	c.Flags = cs.RegisterRedisClientFlags(c.Flags)
	c.Flags = catalog.RegisterFlags(c.Flags)
}

func withCatalogStore(c *cli.Context, fn func(st *catalog.Store) error) error {
	// Setting DB
	pg := cs.NewPG(c)
	defer pg.Close()
	if pg.Get() == nil {
		return errors.New("db is nil")
	}

	// Setting Redis
	rc := cs.NewRedisClient(c)
	defer rc.Close()
	var cl redis.UniversalClient = rc.Get()

	return fn(catalog.NewStore(c, pg, cl))
}

func seedCatalog(c *cli.Context) error {
	titles, err := catalog.LoadSeed(c.String(seedFileFlag))
	if err != nil {
		return err
	}
	return withCatalogStore(c, func(st *catalog.Store) error {
		if err := st.Seed(context.Background(), titles); err != nil {
			return err
		}
		fmt.Printf("seeded %d titles\n", len(titles))
		return nil
	})
}

func printCatalogViews(c *cli.Context) error {
	return withCatalogStore(c, func(st *catalog.Store) error {
		cat, err := st.Catalog(context.Background())
		if err != nil {
			return err
		}
		p := view.Compose(cat, nil, view.NoModal())
		if p.Empty() {
			fmt.Println("catalog is empty")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintf(w, "hero\t%v\t%v\n", p.Hero.TitleID, p.Hero.Title)
		for _, r := range p.Rows {
			for i, t := range r.Titles {
				_, _ = fmt.Fprintf(w, "%v\t%d\t%v\t%v\n", r.Title, i+1, t.TitleID, t.Title)
			}
		}
		return w.Flush()
	})
}
