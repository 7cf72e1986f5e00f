package ui

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

// ConnectUI is the join screen: server address, player name and a connect
// button.
type ConnectUI struct {
	UI *ebitenui.UI

	OnConnect func(address, name string)

	addressInput *widget.TextInput
	nameInput    *widget.TextInput
	statusLabel  *widget.Label
	connectBtn   *widget.Button

	titleFace  text.Face
	normalFace text.Face
	smallFace  text.Face
}

// LoadFaces returns the title, normal and small UI faces.
func LoadFaces() (title, normal, small text.Face, err error) {
	fontSource, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load UI font: %w", err)
	}
	return &text.GoTextFace{Source: fontSource, Size: 18},
		&text.GoTextFace{Source: fontSource, Size: 12},
		&text.GoTextFace{Source: fontSource, Size: 10},
		nil
}

func NewConnectUI(address, name string, onConnect func(address, name string)) (*ConnectUI, error) {
	ui := &ConnectUI{OnConnect: onConnect}
	var err error
	ui.titleFace, ui.normalFace, ui.smallFace, err = LoadFaces()
	if err != nil {
		return nil, err
	}
	ui.buildUI()
	ui.addressInput.SetText(address)
	ui.nameInput.SetText(name)
	return ui, nil
}

func (ui *ConnectUI) buildUI() {
	rootContainer := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(image.NewNineSliceColor(color.RGBA{18, 28, 22, 255})),
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)

	padding := widget.Insets{Top: 10, Bottom: 10, Left: 12, Right: 12}
	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(image.NewNineSliceColor(color.RGBA{30, 45, 35, 255})),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Padding(&padding),
			widget.RowLayoutOpts.Spacing(8),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionCenter,
				VerticalPosition:   widget.AnchorLayoutPositionCenter,
			}),
		),
	)

	panel.AddChild(widget.NewLabel(
		widget.LabelOpts.Text("ELFWALK", &ui.titleFace, &widget.LabelColor{
			Idle: color.RGBA{220, 255, 220, 255},
		}),
	))

	ui.addressInput = ui.newInput(180, "localhost:7373")
	panel.AddChild(ui.labeledRow("Server:", ui.addressInput))

	ui.nameInput = ui.newInput(180, "elf")
	panel.AddChild(ui.labeledRow("Name:  ", ui.nameInput))

	ui.connectBtn = widget.NewButton(
		widget.ButtonOpts.WidgetOpts(widget.WidgetOpts.MinSize(120, 26)),
		widget.ButtonOpts.Image(&widget.ButtonImage{
			Idle:     image.NewNineSliceColor(color.RGBA{40, 100, 40, 255}),
			Hover:    image.NewNineSliceColor(color.RGBA{60, 140, 60, 255}),
			Pressed:  image.NewNineSliceColor(color.RGBA{30, 80, 30, 255}),
			Disabled: image.NewNineSliceColor(color.RGBA{40, 50, 40, 255}),
		}),
		widget.ButtonOpts.Text("Connect", &ui.normalFace, &widget.ButtonTextColor{
			Idle:     color.RGBA{255, 255, 255, 255},
			Hover:    color.RGBA{200, 255, 200, 255},
			Pressed:  color.RGBA{150, 200, 150, 255},
			Disabled: color.RGBA{100, 100, 100, 255},
		}),
		widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
			if ui.OnConnect != nil {
				ui.OnConnect(ui.Address(), ui.Name())
			}
		}),
	)
	panel.AddChild(ui.connectBtn)

	ui.statusLabel = widget.NewLabel(
		widget.LabelOpts.Text("", &ui.smallFace, &widget.LabelColor{
			Idle: color.RGBA{255, 200, 100, 255},
		}),
	)
	panel.AddChild(ui.statusLabel)

	rootContainer.AddChild(panel)
	ui.UI = &ebitenui.UI{Container: rootContainer}
}

func (ui *ConnectUI) labeledRow(label string, input *widget.TextInput) *widget.Container {
	row := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
			widget.RowLayoutOpts.Spacing(6),
		)),
	)
	row.AddChild(widget.NewLabel(
		widget.LabelOpts.Text(label, &ui.normalFace, &widget.LabelColor{
			Idle: color.RGBA{200, 200, 200, 255},
		}),
	))
	row.AddChild(input)
	return row
}

func (ui *ConnectUI) newInput(width int, placeholder string) *widget.TextInput {
	return widget.NewTextInput(
		widget.TextInputOpts.WidgetOpts(widget.WidgetOpts.MinSize(width, 22)),
		widget.TextInputOpts.Image(&widget.TextInputImage{
			Idle:     image.NewNineSliceColor(color.RGBA{50, 70, 55, 255}),
			Disabled: image.NewNineSliceColor(color.RGBA{40, 50, 45, 255}),
		}),
		widget.TextInputOpts.Face(&ui.normalFace),
		widget.TextInputOpts.Color(&widget.TextInputColor{
			Idle:          color.RGBA{255, 255, 255, 255},
			Disabled:      color.RGBA{128, 128, 128, 255},
			Caret:         color.RGBA{255, 255, 255, 255},
			DisabledCaret: color.RGBA{128, 128, 128, 255},
		}),
		widget.TextInputOpts.Placeholder(placeholder),
		widget.TextInputOpts.Padding(widget.NewInsetsSimple(4)),
	)
}

// Address returns the entered server address, defaulting to localhost:7373.
func (ui *ConnectUI) Address() string {
	if addr := ui.addressInput.GetText(); addr != "" {
		return addr
	}
	return "localhost:7373"
}

// Name returns the entered player name.
func (ui *ConnectUI) Name() string {
	return ui.nameInput.GetText()
}

func (ui *ConnectUI) SetStatus(msg string) {
	if ui.statusLabel != nil {
		ui.statusLabel.Label = msg
	}
}

func (ui *ConnectUI) SetConnecting(connecting bool) {
	if ui.connectBtn != nil {
		ui.connectBtn.GetWidget().Disabled = connecting
	}
}

func (ui *ConnectUI) Update() {
	ui.UI.Update()
}
