package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"competition-scheduler/driver"
	"competition-scheduler/models"
	"competition-scheduler/scheduler"
	"competition-scheduler/store"
)

func init() {
	err := godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file")
	}
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: trophy-cli <competition name>")
		os.Exit(1)
	}
	name := strings.Join(os.Args[1:], " ")

	db := driver.ConnectDB()
	defer db.Close()
	cs := store.New(db)

	for {
		displayMenu(name)
		choice := readChoice()

		switch choice {
		case "1":
			displayTrophyList(cs, name)
		case "2":
			displaySchedule(cs, name)
		case "3":
			displayUnplaced(cs, name)
		case "4":
			displayBlockUsage(cs, name)
		case "5":
			color.Green("Goodbye!")
			return
		default:
			color.Red("Invalid choice. Please try again.")
		}
	}
}

func displayMenu(name string) {
	color.Cyan("\n=== %s ===", name)
	fmt.Println("1. Trophy List")
	fmt.Println("2. Schedule")
	fmt.Println("3. Unplaced Students")
	fmt.Println("4. Time Block Usage")
	fmt.Println("5. Exit")
	fmt.Print("Enter choice: ")
}

func readChoice() string {
	reader := bufio.NewReader(os.Stdin)
	choice, _ := reader.ReadString('\n')
	return strings.TrimSpace(choice)
}

func loadState(cs *store.CompetitionStore, name string) *models.CompetitionState {
	state, _, err := cs.Load(name)
	if err != nil {
		color.Red("Could not load competition %s: %v", name, err)
		return nil
	}
	return state
}

func displayTrophyList(cs *store.CompetitionStore, name string) {
	state := loadState(cs, name)
	if state == nil {
		return
	}

	color.Yellow("\nTrophy List")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Section", "Level", "Name", "Teacher", "Result"})

	for _, group := range scheduler.TrophyList(state) {
		for _, entry := range group.Entries {
			table.Append([]string{
				group.Section.Display(),
				fmt.Sprintf("%d", group.Level),
				entry.Name,
				entry.Teacher,
				string(entry.Result),
			})
		}
	}

	table.Render()
}

func displaySchedule(cs *store.CompetitionStore, name string) {
	state := loadState(cs, name)
	if state == nil {
		return
	}

	color.Yellow("\nSchedule")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Name", "Day", "Date", "Start Time", "Room", "Location"})

	for _, p := range scheduler.Assignments(state) {
		table.Append([]string{
			p.Name,
			string(p.Day),
			p.Date,
			p.StartTime,
			p.Room,
			p.Location,
		})
	}

	table.Render()
}

func displayUnplaced(cs *store.CompetitionStore, name string) {
	state := loadState(cs, name)
	if state == nil {
		return
	}

	unplaced := scheduler.UnplacedStudents(state)
	if len(unplaced) == 0 {
		color.Green("\nEvery registered student is placed.")
		return
	}

	color.Yellow("\nUnplaced Students")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Hash", "Name", "Reason"})

	for _, f := range unplaced {
		table.Append([]string{f.Hash, f.Name, f.Reason})
	}

	table.Render()
}

func displayBlockUsage(cs *store.CompetitionStore, name string) {
	state := loadState(cs, name)
	if state == nil {
		return
	}

	color.Yellow("\nTime Block Usage")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Day", "Start Time", "Room", "Section", "Levels", "Students", "Minutes Used"})

	for _, b := range state.Blocks {
		table.Append([]string{
			string(b.Day),
			b.StartTime,
			b.Room,
			b.Section.Display(),
			fmt.Sprintf("%d-%d", b.SkillMin, b.SkillMax),
			fmt.Sprintf("%d", len(b.Assigned)),
			fmt.Sprintf("%d/%d", b.UsedMinutes, b.CapacityMinutes),
		})
	}

	table.Render()
}
